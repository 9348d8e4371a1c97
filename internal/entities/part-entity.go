package entities

import "time"

type Part struct {
	ID          uint64
	PartNumber  string
	Description string
	CreatedAt   time.Time
}
