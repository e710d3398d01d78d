package model

import "errors"

var (
	ErrSystemNotFound = errors.New("system not found")
	ErrPOINotFound    = errors.New("poi not found")
	ErrItemNotFound   = errors.New("item not found")
	ErrNoRoute        = errors.New("no known route")
)
