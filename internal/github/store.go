package gh

import "github.com/reviewbotci/lintbridge/pkg/review"

// ReviewStore persists completed file reviews by posting their violations
// as pull request review comments.
type ReviewStore struct {
	client Client
}

func NewReviewStore(client Client) *ReviewStore {
	return &ReviewStore{client: client}
}

func (s *ReviewStore) Save(fr *review.FileReview) error {
	return s.client.CreateReviewComments(fr)
}
