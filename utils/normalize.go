package utils

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

var storeNameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// NormalizeStoreName turns free-form merchant input into a bare Shopify store
// handle: trimmed, lowercased, scheme and ".myshopify.com" suffix stripped.
// Returns an error naming the problem when nothing usable remains.
func NormalizeStoreName(name string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimSuffix(s, "/")
	s = strings.TrimSuffix(s, ".myshopify.com")
	if s == "" {
		return "", fmt.Errorf("store_name is required")
	}
	if !storeNameRe.MatchString(s) {
		return "", fmt.Errorf("store_name contains invalid characters")
	}
	return s, nil
}

// NormalizeDTO trims string fields on a pointer-to-struct DTO.
func NormalizeDTO(dto any) {
	v := reflect.ValueOf(dto)
	if v.Kind() != reflect.Ptr {
		return
	}
	s := v.Elem()
	if s.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < s.NumField(); i++ {
		f := s.Field(i)
		if f.Kind() == reflect.String && f.CanSet() {
			f.SetString(strings.TrimSpace(f.String()))
		}
	}
}
