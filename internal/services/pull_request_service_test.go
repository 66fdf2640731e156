package services

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/alimgiray/reviewgate/internal/models"
	"github.com/alimgiray/reviewgate/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPullRequestService(t *testing.T) (*PullRequestService, *repositories.PullRequestRepository) {
	db := openTestDB(t)
	prRepo := repositories.NewPullRequestRepository(db)
	return NewPullRequestService(prRepo, repositories.NewReviewerRepository(db)), prRepo
}

func TestPullRequestServiceCreateOrUpdate(t *testing.T) {
	service, prRepo := newTestPullRequestService(t)

	pr, err := service.CreateOrUpdate(PullRequestInput{
		Repository: "octo/widgets",
		Number:     12,
		HeadSHA:    "0123456789abcdef0123456789abcdef01234567",
		Reviewers:  ParseChecklist("- [ ] @aergonaut\n- [x] @BrentW\n- [x] @BrentW\n"),
	})
	require.NoError(t, err)

	assert.Equal(t, models.PullRequestStatusPendingReview, pr.Status, "status is provisional when not given")
	require.Len(t, pr.Reviewers, 2)
	assert.Equal(t, "aergonaut", pr.PendingReviewers()[0].Login)
	assert.Equal(t, "BrentW", pr.CompletedReviewers()[0].Login)

	_, err = service.CreateOrUpdate(PullRequestInput{
		Repository: "octo/widgets",
		Number:     12,
		HeadSHA:    "0123456789abcdef0123456789abcdef01234567",
		Reviewers:  ParseChecklist("- [ ] @aergonaut\n- [x] @BrentW\n"),
	})
	require.NoError(t, err)

	count, err := prRepo.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	found, err := service.Find("octo/widgets", 12)
	require.NoError(t, err)
	assert.Len(t, found.Reviewers, 2)
}

func TestPullRequestServiceCreateOrUpdateDeduplicatesRawItems(t *testing.T) {
	service, _ := newTestPullRequestService(t)

	pr, err := service.CreateOrUpdate(PullRequestInput{
		Repository: "octo/widgets",
		Number:     13,
		Status:     models.PullRequestStatusApproved,
		Reviewers: []ChecklistItem{
			{Login: "BrentW"},
			{Login: "brentw", Completed: true},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, models.PullRequestStatusApproved, pr.Status)
	require.Len(t, pr.Reviewers, 1)
	assert.Equal(t, models.ReviewStateCompleted, pr.Reviewers[0].State)
}

func TestPullRequestServiceFindMissing(t *testing.T) {
	service, _ := newTestPullRequestService(t)

	_, err := service.Find("octo/widgets", 99)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}
