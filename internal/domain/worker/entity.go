package worker

import "time"

// Worker is a registered seasonal worker. Phone and IDNumber are plaintext here;
// the repository stores them encrypted alongside lookup hashes.
type Worker struct {
	ID        string
	UID       string
	Name      string
	Phone     string
	IDNumber  string
	Email     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MaskedPhone keeps the first three and last four digits.
func (w Worker) MaskedPhone() string {
	return mask(w.Phone, 3, 4)
}

func (w Worker) MaskedIDNumber() string {
	return mask(w.IDNumber, 4, 4)
}

func mask(s string, head, tail int) string {
	r := []rune(s)
	if len(r) <= head+tail {
		return s
	}
	out := make([]rune, len(r))
	for i := range r {
		if i < head || i >= len(r)-tail {
			out[i] = r[i]
		} else {
			out[i] = '*'
		}
	}
	return string(out)
}

// HashBackfillResult reports one pass of the lookup-hash backfill.
type HashBackfillResult struct {
	Scanned int
	Updated int
	Skipped int
	// LastID is the highest id scanned; the next pass starts after it
	LastID string
}
