package blobs

// Replies sent to submitters while handling intake.
const (
	badSuggestionMsg = "Your suggestion was removed because it did not include a PNG, JPG or GIF image. Post the image as an attachment, optionally with a name and a note like `blobcat - a cat holding a blob`."
	tooLargeMsg      = "Your suggestion was removed because the image is larger than 256 KiB, the limit Discord places on emoji."
	botBrokenMsg     = "Sorry, I couldn't process your suggestion right now. The moderators have been told, please try again later."
	receivedMsg      = "Thanks! Your suggestion %s (#%d) is now waiting for review by the council."
	revokedMsg       = "Suggestion #%d has been revoked."
	nothingToRevoke  = "You have no suggestions to revoke at this time."
	notAuthorizedMsg = "❌ You are not allowed to use this command."
)
