package weft

// FillDefaults copies entries from defaults into dst for keys dst does not
// already have, shallowly. dst may be nil; the (possibly new) map is
// returned. Existing entries in dst are never overwritten.
//
// This is the helper for assembling a callback map from a partial user map
// plus library defaults before Install; the per-method resolution inside
// the engine never merges maps.
func FillDefaults[K comparable, V any](dst, defaults map[K]V) map[K]V {
	if dst == nil {
		dst = make(map[K]V, len(defaults))
	}
	for k, v := range defaults {
		if _, ok := dst[k]; !ok {
			dst[k] = v
		}
	}
	return dst
}
