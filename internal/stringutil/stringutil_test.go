package stringutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var caseConversionTests = []struct {
	pascalCase string
	snakeCase  string
}{
	{"ID", "id"},
	{"ExternalID", "external_id"},
	{"Title", "title"},
	{"ChannelID", "channel_id"},
	{"ChannelExternalID", "channel_external_id"},
	{"DurationSeconds", "duration_seconds"},
	{"ReleaseDate", "release_date"},
	{"PublishedText", "published_text"},
	{"ViewCount", "view_count"},
	{"LikeCount", "like_count"},
	{"CommentCount", "comment_count"},
	{"ScrapedAt", "scraped_at"},
	{"CreatedAt", "created_at"},
	{"QueueName", "queue_name"},
	{"Payload", "payload"},
	{"RunAfter", "run_after"},
	{"FailureDelaySeconds", "failure_delay_seconds"},
	{"AttemptsRemaining", "attempts_remaining"},
	{"ReservedAt", "reserved_at"},
	{"ReservedUntil", "reserved_until"},
	{"FinishedAt", "finished_at"},
	{"ErrorMessage", "error_message"},
}

func TestPascalToSnake(t *testing.T) {
	for _, tc := range caseConversionTests {
		t.Run(tc.pascalCase, func(t *testing.T) {
			a := assert.New(t)
			a.Equal(tc.snakeCase, PascalToSnake(tc.pascalCase))
		})
	}
}

func BenchmarkPascalToSnake(b *testing.B) {
	for _, tc := range caseConversionTests {
		b.Run(tc.pascalCase, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				PascalToSnake(tc.pascalCase)
			}
		})
	}
}

var looksTrueTests = []struct {
	input string
	value bool
}{
	{"true", true},
	{"TRUE", true},
	{"yes", true},
	{"1", true},
	{"on", true},
	{"enabled", true},
	{"false", false},
	{"no", false},
	{"0", false},
	{"", false},
	{"maybe", false},
}

func TestLooksTrue(t *testing.T) {
	for _, tc := range looksTrueTests {
		t.Run(tc.input, func(t *testing.T) {
			a := assert.New(t)
			a.Equal(tc.value, LooksTrue(tc.input))
		})
	}
}
