package auth

import (
	"encoding/json"
	"strconv"

	"github.com/naveenspark/authsync/pkg/domain"
)

// DecodeUser pulls a user out of an API response body. Accepted shapes, in
// order:
//
//	{"id": ..., "email": ..., ...}
//	{"user": {"id": ..., "email": ..., ...}}
//
// Roles come from "roles" (list or single string), else "role". The display
// name comes from "displayName", then "display_name", then "name". The second
// return value is false for anything else; DecodeUser never panics.
func DecodeUser(v any) (domain.User, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return domain.User{}, false
	}
	if u, ok := decodeRawUser(obj); ok {
		return u, true
	}
	if inner, ok := obj["user"].(map[string]any); ok {
		return decodeRawUser(inner)
	}
	return domain.User{}, false
}

func decodeRawUser(obj map[string]any) (domain.User, bool) {
	id, ok := idString(obj["id"])
	if !ok {
		return domain.User{}, false
	}
	email, ok := obj["email"].(string)
	if !ok {
		return domain.User{}, false
	}
	return domain.User{
		ID:          id,
		Email:       email,
		Roles:       decodeRoles(obj),
		DisplayName: firstString(obj, "displayName", "display_name", "name"),
	}, true
}

func idString(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		return id, id != ""
	case json.Number:
		return id.String(), true
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), true
	}
	return "", false
}

func decodeRoles(obj map[string]any) []string {
	switch roles := obj["roles"].(type) {
	case []any:
		out := make([]string, 0, len(roles))
		for _, r := range roles {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return append([]string(nil), roles...)
	case string:
		return []string{roles}
	}
	if role, ok := obj["role"].(string); ok {
		return []string{role}
	}
	return nil
}

func firstString(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := obj[k].(string); ok {
			return s
		}
	}
	return ""
}
