package utils

import (
	"slices"

	"blobqueue/model"
)

// CheckAuth 检查用户是否为开发者或议会成员
func CheckAuth(auth model.Auth, userID string, roles []string) bool {
	if slices.Contains(auth.Developers, userID) {
		return true
	}

	for _, role := range roles {
		if slices.Contains(auth.CouncilRoles, role) {
			return true
		}
	}

	return false
}
