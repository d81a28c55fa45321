// Package guard decides whether an instance has opted in to automated type
// management, and reads the durable original-type record. Both live as tags
// on the instance itself; nothing else persists.
package guard

const (
	// OptInTagKey marks an instance as managed when its value is exactly
	// "true".
	OptInTagKey = "Flexible"

	// OriginalTypeTagKey records the operator's type at the moment of the
	// first substitution. Present iff a revert is owed.
	OriginalTypeTagKey = "OriginalType"
)

// IsManaged reports whether the tag set opts the instance in. The value
// comparison is case-sensitive: anything other than exactly "true" leaves
// the instance invisible to the controllers.
func IsManaged(tags map[string]string) bool {
	return tags[OptInTagKey] == "true"
}

// OriginalType returns the recorded original type, if any.
func OriginalType(tags map[string]string) (string, bool) {
	v, ok := tags[OriginalTypeTagKey]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
