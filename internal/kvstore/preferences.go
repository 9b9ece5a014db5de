package kvstore

import "fyne.io/fyne/v2"

// absent is returned by fyne for missing keys. It can not be stored by users.
const absent = "\x00kvstore-absent\x00"

// Preferences is a Store backed by Fyne's app preferences.
type Preferences struct {
	p fyne.Preferences
}

var _ Store = (*Preferences)(nil)

// NewPreferences returns a Store using p for persistence.
func NewPreferences(p fyne.Preferences) *Preferences {
	return &Preferences{p: p}
}

func (s *Preferences) Contains(key string) bool {
	_, ok := s.Get(key)
	return ok
}

func (s *Preferences) Delete(key string) {
	s.p.RemoveValue(key)
}

func (s *Preferences) Get(key string) (string, bool) {
	v := s.p.StringWithFallback(key, absent)
	if v == absent {
		return "", false
	}
	return v, true
}

func (s *Preferences) Set(key, value string) {
	if value == absent {
		return
	}
	s.p.SetString(key, value)
}
