package chunker

import (
	"strings"
	"testing"

	"github.com/poiesic/precedent/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChunker(t *testing.T, opts ...Option) *Chunker {
	t.Helper()
	opts = append([]Option{WithTokenCounter(NewWordCounter())}, opts...)
	c, err := New(opts...)
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c, err := New(WithTokenCounter(NewWordCounter()))
		require.NoError(t, err)

		assert.Equal(t, DefaultMaxTokens, c.maxTokens)
		assert.Equal(t, DefaultOverlapTokens, c.overlapTokens)
		assert.Equal(t, DefaultMaxChunks, c.maxChunks)
	})

	t.Run("invalid max tokens", func(t *testing.T) {
		_, err := New(WithMaxTokens(0))
		assert.ErrorIs(t, err, ErrInvalidMaxTokens)
	})

	t.Run("negative overlap", func(t *testing.T) {
		_, err := New(WithOverlapTokens(-1))
		assert.ErrorIs(t, err, ErrInvalidOverlap)
	})

	t.Run("overlap not smaller than max", func(t *testing.T) {
		_, err := New(WithMaxTokens(50), WithOverlapTokens(50))
		assert.ErrorIs(t, err, ErrOverlapTooLarge)
	})

	t.Run("invalid max chunks", func(t *testing.T) {
		_, err := New(WithMaxChunks(0))
		assert.ErrorIs(t, err, ErrInvalidMaxChunks)
	})

	t.Run("nil token counter", func(t *testing.T) {
		_, err := New(WithTokenCounter(nil))
		assert.ErrorIs(t, err, ErrTokenCounterRequired)
	})
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "collapses whitespace runs",
			input:    "The  site \t comprises   a dwelling",
			expected: "The site comprises a dwelling",
		},
		{
			name:     "inserts break before capital after period",
			input:    "Permission granted. The works may begin",
			expected: "Permission granted.\nThe works may begin",
		},
		{
			name:     "no break before lowercase",
			input:    "approx. three metres deep",
			expected: "approx. three metres deep",
		},
		{
			name:     "strips stripped line breaks",
			input:    "First sentence.\n\n\nSecond sentence.",
			expected: "First sentence.\nSecond sentence.",
		},
		{
			name:     "empty input",
			input:    "   \n\t ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestChunkDocument_EmptyInput(t *testing.T) {
	c := newTestChunker(t)

	assert.Empty(t, c.ChunkDocument("doc-1", ""))
	assert.Empty(t, c.ChunkDocument("doc-1", "   \n\t  "))
}

func TestChunkDocument_SingleChunk(t *testing.T) {
	c := newTestChunker(t)

	chunks := c.ChunkDocument("doc-1", "Planning permission is granted. The development must begin within three years.")
	require.Len(t, chunks, 1)

	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, "doc-1", chunks[0].DocumentID)
	assert.Equal(t, core.ChunkID("doc-1", 0), chunks[0].ID)
	assert.Equal(t, "Planning permission is granted. The development must begin within three years.", chunks[0].Text)
	assert.Equal(t, 11, chunks[0].TokenCount)
}

func TestChunkDocument_Coverage(t *testing.T) {
	// With no overlap, joining the chunks must reproduce the normalized
	// text exactly (sentence breaks render as spaces inside chunks).
	c := newTestChunker(t, WithMaxTokens(8), WithOverlapTokens(0))

	input := "The site comprises a two storey dwelling. " +
		"Permission is sought for a rear extension. " +
		"The extension projects three metres. " +
		"No objections were received from neighbours. " +
		"The proposal accords with local policy."

	chunks := c.ChunkDocument("doc-1", input)
	require.NotEmpty(t, chunks)

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	joined := strings.Join(texts, " ")

	expected := strings.ReplaceAll(Normalize(input), "\n", " ")
	assert.Equal(t, expected, joined)
}

func TestChunkDocument_Bound(t *testing.T) {
	c := newTestChunker(t, WithMaxTokens(10), WithOverlapTokens(3))

	input := "Alpha beta gamma delta. Epsilon zeta eta theta. Iota kappa lambda mu. " +
		"Nu xi omicron pi. Rho sigma tau upsilon. Phi chi psi omega."

	chunks := c.ChunkDocument("doc-1", input)
	require.NotEmpty(t, chunks)

	for _, chunk := range chunks {
		assert.LessOrEqual(t, chunk.TokenCount, 10, "chunk %d over budget", chunk.Index)
	}
}

func TestChunkDocument_Overlap(t *testing.T) {
	c := newTestChunker(t, WithMaxTokens(10), WithOverlapTokens(4))

	// Six sentences of three tokens each.
	input := "Alpha beta gamma. Delta epsilon zeta. Eta theta iota. " +
		"Kappa lambda mu. Nu xi omicron. Pi rho sigma."

	chunks := c.ChunkDocument("doc-1", input)
	require.GreaterOrEqual(t, len(chunks), 2)

	for i := 1; i < len(chunks); i++ {
		prevWords := strings.Fields(chunks[i-1].Text)
		currWords := strings.Fields(chunks[i].Text)

		// The overlap window is whole trailing sentences; each sentence
		// here is three tokens, so one sentence carries over.
		require.GreaterOrEqual(t, len(prevWords), 3)
		require.GreaterOrEqual(t, len(currWords), 3)
		tail := strings.Join(prevWords[len(prevWords)-3:], " ")
		head := strings.Join(currWords[:3], " ")
		assert.Equal(t, tail, head, "chunk %d should start with the tail of chunk %d", i, i-1)
	}
}

func TestChunkDocument_HardSplit(t *testing.T) {
	c := newTestChunker(t, WithMaxTokens(5), WithOverlapTokens(2))

	// Sentence 2 alone exceeds the budget and must be hard-split on word
	// boundaries; sentences 1 and 3 chunk normally around it.
	input := "Short first sentence here. " +
		"This extremely long second sentence just keeps going on and on forever. " +
		"Final sentence."

	chunks := c.ChunkDocument("doc-1", input)
	require.Len(t, chunks, 5)

	assert.Equal(t, "Short first sentence here.", chunks[0].Text)
	assert.Equal(t, "This extremely long second sentence", chunks[1].Text)
	assert.Equal(t, "just keeps going on and", chunks[2].Text)
	assert.Equal(t, "on forever.", chunks[3].Text)
	assert.Equal(t, "Final sentence.", chunks[4].Text)

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
		assert.LessOrEqual(t, chunk.TokenCount, 5)
	}
}

func TestChunkDocument_NoPunctuation(t *testing.T) {
	c := newTestChunker(t, WithMaxTokens(4), WithOverlapTokens(1))

	// No sentence-ending punctuation at all: the whole text is one
	// sentence and falls into the hard-split path.
	chunks := c.ChunkDocument("doc-1", "one two three four five six seven eight nine")
	require.Len(t, chunks, 3)

	assert.Equal(t, "one two three four", chunks[0].Text)
	assert.Equal(t, "five six seven eight", chunks[1].Text)
	assert.Equal(t, "nine", chunks[2].Text)
}

func TestChunkDocument_MaxChunksCap(t *testing.T) {
	c := newTestChunker(t, WithMaxTokens(3), WithOverlapTokens(0), WithMaxChunks(3))

	var sb strings.Builder
	for i := 0; i < 20; i++ {
		sb.WriteString("Alpha beta gamma. ")
	}

	chunks := c.ChunkDocument("doc-1", sb.String())
	assert.Len(t, chunks, 3)
}

func TestChunkDocument_Sections(t *testing.T) {
	c := newTestChunker(t)

	input := "Proposal: Erection of a single storey rear extension. " +
		"The extension projects three metres from the rear wall. " +
		"Assessment: The proposal is modest in scale. " +
		"No harm arises to neighbouring amenity. " +
		"Conclusion: Planning permission should be granted."

	chunks := c.ChunkDocument("doc-1", input)
	require.Len(t, chunks, 3)

	assert.Equal(t, core.SectionProposal, chunks[0].Section)
	assert.Equal(t, core.SectionAssessment, chunks[1].Section)
	assert.Equal(t, core.SectionConclusion, chunks[2].Section)
}

func TestChunkDocument_StableIDs(t *testing.T) {
	c := newTestChunker(t)

	text := "Permission refused. The proposal harms the conservation area."
	first := c.ChunkDocument("doc-1", text)
	second := c.ChunkDocument("doc-1", text)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}

	// A different document yields different chunk IDs for the same text.
	other := c.ChunkDocument("doc-2", text)
	require.Equal(t, len(first), len(other))
	assert.NotEqual(t, first[0].ID, other[0].ID)
}

func TestDetectHeading(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		tag     core.SectionTag
		heading bool
	}{
		{"keyword with colon", "Proposal: Erection of extension.", core.SectionProposal, true},
		{"bare keyword", "Conditions", core.SectionConditions, true},
		{"numbered known heading", "7. Assessment of the proposal.", core.SectionAssessment, true},
		{"numbered unknown heading", "3. Background to the application.", core.SectionUnclassified, true},
		{"all caps known heading", "OFFICER RECOMMENDATION", core.SectionRecommendation, true},
		{"all caps unknown heading", "SITE AND SURROUNDINGS", core.SectionUnclassified, true},
		{"plain sentence", "The site lies within a conservation area.", core.SectionUnclassified, false},
		{"empty line", "   ", core.SectionUnclassified, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag, heading := detectHeading(tt.line)
			assert.Equal(t, tt.heading, heading)
			assert.Equal(t, tt.tag, tag)
		})
	}
}
