package entity

import "errors"

// ErrMailRejected marks a delivery the mail server refused for good, retrying it cannot succeed.
var ErrMailRejected = errors.New("notification: mail rejected by server")
