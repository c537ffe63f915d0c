package database

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Topic documents are immutable once created, so a small expiring cache in
// front of FindTopic is safe and spares a round trip on every room view.
var topicCache = expirable.NewLRU[string, *Topic](256, nil, time.Hour)
