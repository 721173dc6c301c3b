package source

// Source reads attributes of one source item, identified by file path.
type Source interface {
	// Format reports the source-format tag for the item ("DICOM", "PAR");
	// ok is false when the item is not supported by this source.
	Format(path string) (string, bool)
	// Attribute returns the named attribute's value, or "" when the item
	// does not carry it. Must be pure for a given item.
	Attribute(name, path string) string
}

// Cache is a single-entry parse cache keyed by item identity. One entry is
// sufficient because items are processed strictly in sequence; the entry is
// invalidated whenever the identity key changes. It is owned by the source
// it is injected into, never shared globally.
type Cache struct {
	key string
	val any
}

// Get returns the cached value for key, loading and replacing the entry on
// a key change. A load error is returned without touching the cache.
func (c *Cache) Get(key string, load func() (any, error)) (any, error) {
	if c.key == key && c.val != nil {
		return c.val, nil
	}
	val, err := load()
	if err != nil {
		return nil, err
	}
	c.key = key
	c.val = val
	return val, nil
}

// Detect returns the first source that supports the item, with its format tag.
func Detect(sources []Source, path string) (Source, string, bool) {
	for _, s := range sources {
		if tag, ok := s.Format(path); ok {
			return s, tag, true
		}
	}
	return nil, "", false
}
