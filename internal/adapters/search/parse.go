package search

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/okian/vidmatch/internal/domain/model"
)

const maxLineBytes = 4 << 20

// entry is the subset of one yt-dlp JSON line the matcher reads.
type entry struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	UploaderID string   `json:"uploader_id"`
	Uploader   string   `json:"uploader"`
	ChannelID  string   `json:"channel_id"`
	Channel    string   `json:"channel"`
	Duration   *float64 `json:"duration"`
	UploadDate string   `json:"upload_date"`
}

// ParseLines reads one JSON object per line. Parsing stops at the first
// line that is not valid JSON; candidates decoded before it are returned
// together with an ErrMalformedOutput error. Entries without an id are
// skipped.
func ParseLines(r io.Reader) ([]model.Candidate, error) {
	var out []model.Candidate
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for n := 1; sc.Scan(); n++ {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var e entry
		if err := json.Unmarshal(line, &e); err != nil {
			return out, fmt.Errorf("%w: line %d: %w", ErrMalformedOutput, n, err)
		}
		if c, ok := e.candidate(); ok {
			out = append(out, c)
		}
	}
	if err := sc.Err(); err != nil {
		return out, fmt.Errorf("%w: %w", ErrMalformedOutput, err)
	}
	return out, nil
}

func (e *entry) candidate() (model.Candidate, bool) {
	id := strings.TrimSpace(e.ID)
	if id == "" {
		return model.Candidate{}, false
	}
	c := model.Candidate{
		ID:         id,
		Title:      e.Title,
		UploaderID: firstNonEmpty(e.UploaderID, e.ChannelID),
		Uploader:   firstNonEmpty(e.Uploader, e.Channel),
		UploadDate: FormatUploadDate(e.UploadDate),
	}
	if e.Duration != nil && *e.Duration > 0 {
		c.DurationSeconds = int(math.Round(*e.Duration))
	}
	return c, true
}

// FormatUploadDate turns "YYYYMMDD" into "YYYY-MM-DD". Any other shape
// yields "".
func FormatUploadDate(s string) string {
	if len(s) != 8 {
		return ""
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return ""
		}
	}
	return s[0:4] + "-" + s[4:6] + "-" + s[6:8]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
