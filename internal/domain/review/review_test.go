package review

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReview(t *testing.T) *Review {
	t.Helper()
	r, err := New(uuid.New(), uuid.New(), "Ona", 4, " Solid ", "Works well", "lt", true)
	require.NoError(t, err)
	return r
}

func TestNewReview(t *testing.T) {
	r := newTestReview(t)
	assert.Equal(t, StatusPending, r.Status)
	assert.Equal(t, "Solid", r.Title)
	assert.True(t, r.VerifiedPurchase)
	assert.False(t, r.IsPublic())

	for _, rating := range []int{0, 6} {
		_, err := New(uuid.New(), uuid.New(), "x", rating, "", "", "lt", false)
		assert.Error(t, err)
	}
	_, err := New(uuid.New(), uuid.New(), "x", 3, strings.Repeat("t", MaxTitleLength+1), "", "lt", false)
	assert.Error(t, err)
	_, err = New(uuid.New(), uuid.New(), "x", 3, "", strings.Repeat("b", MaxBodyLength+1), "lt", false)
	assert.Error(t, err)
	_, err = New(uuid.Nil, uuid.New(), "x", 3, "", "", "lt", false)
	assert.Error(t, err)
}

func TestModeration(t *testing.T) {
	r := newTestReview(t)
	mod := uuid.New()

	require.NoError(t, r.Approve(mod))
	assert.True(t, r.IsPublic())
	assert.Equal(t, mod, *r.ModeratedBy)
	assert.Error(t, r.Approve(mod))

	assert.Error(t, r.Reject(mod, ""))
	require.NoError(t, r.Reject(mod, "spam"))
	assert.Equal(t, "spam", r.RejectionReason)
	assert.Error(t, r.Reject(mod, "again"))

	require.NoError(t, r.Approve(mod))
	assert.Empty(t, r.RejectionReason)
}

func TestEditReturnsToModeration(t *testing.T) {
	r := newTestReview(t)
	require.NoError(t, r.Approve(uuid.New()))
	r.ClearDomainEvents()

	require.NoError(t, r.Edit(2, "Changed", "Broke after a week"))
	assert.Equal(t, StatusPending, r.Status)
	assert.Nil(t, r.ModeratedAt)
	assert.Len(t, r.GetDomainEvents(), 1)
	assert.Error(t, r.Edit(9, "", ""))
}

func TestSummarize(t *testing.T) {
	s := Summarize([5]int{1, 0, 0, 2, 3})
	assert.Equal(t, 6, s.Count)
	assert.Equal(t, "4.0", s.Average.StringFixed(1))

	s = Summarize([5]int{0, 0, 1, 1, 0})
	assert.Equal(t, "3.5", s.Average.StringFixed(1))

	empty := Summarize([5]int{})
	assert.Equal(t, 0, empty.Count)
	assert.True(t, empty.Average.IsZero())
}
