package changefeed

import (
	"testing"

	"github.com/MinhaulMahmud/PersonalBlog/bindings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelName(t *testing.T) {
	assert.Equal(t, "posts.01HX.changes", ChannelName("01HX"))
}

func TestDecode(t *testing.T) {
	counts, err := Decode([]byte(`{"post_id":"p1","view_count":5,"read_count":2}`))
	require.NoError(t, err)
	assert.Equal(t, bindings.PostCounts{PostId: "p1", ViewCount: 5, ReadCount: 2}, counts)

	_, err = Decode([]byte(`{"view_count":5}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}
