package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// UserID records the user identifier under the key "user_id".
func UserID(id string) slog.Attr {
	return slog.String("user_id", id)
}

// RecordID records a save-record identifier under the key "record_id".
func RecordID(id string) slog.Attr {
	return slog.String("record_id", id)
}

// MessageType records a protocol message type under the key "message_type".
func MessageType(t string) slog.Attr {
	return slog.String("message_type", t)
}

// Origin records a sender origin under the key "origin".
func Origin(o string) slog.Attr {
	return slog.String("origin", o)
}

// TargetID records a broadcast target identifier under the key "target_id".
func TargetID(id string) slog.Attr {
	return slog.String("target_id", id)
}
