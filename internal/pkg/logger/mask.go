package logger

import (
	"strings"

	"github.com/sirupsen/logrus"
)

const maskedValue = "******"

// MaskHook replaces the value of sensitive fields before formatting.
type MaskHook struct {
	fields map[string]struct{}
}

// NewMaskHook masks the named fields, matched case-insensitively.
func NewMaskHook(fields ...string) *MaskHook {
	h := &MaskHook{fields: make(map[string]struct{}, len(fields))}
	for _, f := range fields {
		h.fields[normalizeKey(f)] = struct{}{}
	}
	return h
}

// Levels implements logrus.Hook.
func (h *MaskHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook.
func (h *MaskHook) Fire(entry *logrus.Entry) error {
	if len(entry.Data) == 0 {
		return nil
	}
	// Entry.Data may be shared with the parent entry; copy before writing.
	data := make(logrus.Fields, len(entry.Data))
	for k, v := range entry.Data {
		if h.sensitive(k) && v != nil {
			data[k] = maskedValue
			continue
		}
		data[k] = v
	}
	entry.Data = data
	return nil
}

func (h *MaskHook) sensitive(key string) bool {
	_, ok := h.fields[normalizeKey(key)]
	return ok
}

func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "-", "_")
}
