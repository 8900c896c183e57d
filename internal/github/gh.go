package gh

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/go-github/v63/github"
	"github.com/reviewbotci/lintbridge/internal/git"
	f "github.com/reviewbotci/lintbridge/pkg/functional"
	"github.com/reviewbotci/lintbridge/pkg/review"
)

type NoPRError struct{}

func (e NoPRError) Error() string {
	return "PR not initialized"
}

// NotFoundError reports a missing file, ref, or repository. The style
// resolver treats it as a signal to advance to the next fallback tier.
type NotFoundError struct {
	Repo string
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found in %s", e.Path, e.Repo)
}

type Client interface {
	SetWarningBuffer(writer io.Writer)
	SetInfoBuffer(writer io.Writer)
	InitPR(prID int) error
	PR() *github.PullRequest
	ChangedFiles() ([]*review.ChangedFile, error)
	FetchFile(repo, ref, path string) (string, error)
	DefaultBranchHead(repo string) (string, error)
	CreateReviewComments(fr *review.FileReview) error
}

type GHClient struct {
	ctx           context.Context
	owner         string
	repo          string
	client        *github.Client
	pr            *github.PullRequest
	warningBuffer io.Writer
	infoBuffer    io.Writer
}

func NewClient(owner, repo, token string) Client {
	client := github.NewClient(nil).WithAuthToken(token)
	return &GHClient{
		ctx:           context.Background(),
		owner:         owner,
		repo:          repo,
		client:        client,
		warningBuffer: io.Discard,
		infoBuffer:    io.Discard,
	}
}

func (gh *GHClient) PR() *github.PullRequest {
	return gh.pr
}

func (gh *GHClient) SetWarningBuffer(writer io.Writer) {
	gh.warningBuffer = writer
}

func (gh *GHClient) SetInfoBuffer(writer io.Writer) {
	gh.infoBuffer = writer
}

func (gh *GHClient) InitPR(prID int) error {
	pull, res, err := gh.client.PullRequests.Get(gh.ctx, gh.owner, gh.repo, prID)
	if err != nil {
		return err
	}
	defer func() {
		_ = res.Body.Close()
	}()
	gh.pr = pull
	return nil
}

// ChangedFiles lists the files of the initialized PR with their patches
// parsed into position-annotated hunks. Content is not fetched here - the
// caller fetches it per file once an adapter has claimed the file.
func (gh *GHClient) ChangedFiles() ([]*review.ChangedFile, error) {
	if gh.pr == nil {
		return nil, &NoPRError{}
	}
	allFiles := make([]*github.CommitFile, 0)
	listFiles := func(page int) (*github.Response, error) {
		listOptions := &github.ListOptions{PerPage: 100, Page: page}
		files, res, err := gh.client.PullRequests.ListFiles(gh.ctx, gh.owner, gh.repo, gh.pr.GetNumber(), listOptions)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = res.Body.Close()
		}()
		allFiles = append(allFiles, files...)
		return res, err
	}
	if err := walkPaginatedApi(listFiles); err != nil {
		return nil, err
	}

	changedFiles := make([]*review.ChangedFile, 0, len(allFiles))
	for _, file := range allFiles {
		if file.GetStatus() == "removed" {
			continue
		}
		changedFile, err := git.ParsePatch(file.GetFilename(), file.GetPatch())
		if err != nil {
			_, _ = fmt.Fprintf(gh.warningBuffer, "WARNING: %v\n", err)
			continue
		}
		changedFiles = append(changedFiles, changedFile)
	}
	return changedFiles, nil
}

// FetchFile returns the decoded content of path in repo at ref. A missing
// file, ref, or repository yields a NotFoundError.
func (gh *GHClient) FetchFile(repo, ref, path string) (string, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return "", err
	}
	opts := &github.RepositoryContentGetOptions{Ref: ref}
	fileContent, _, res, err := gh.client.Repositories.GetContents(gh.ctx, owner, name, path, opts)
	if err != nil {
		if res != nil && res.StatusCode == http.StatusNotFound {
			return "", &NotFoundError{Repo: repo, Path: path}
		}
		return "", err
	}
	if fileContent == nil {
		return "", &NotFoundError{Repo: repo, Path: path}
	}
	return fileContent.GetContent()
}

// DefaultBranchHead resolves the commit SHA at the tip of repo's default
// branch.
func (gh *GHClient) DefaultBranchHead(repo string) (string, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return "", err
	}
	repository, res, err := gh.client.Repositories.Get(gh.ctx, owner, name)
	if err != nil {
		if res != nil && res.StatusCode == http.StatusNotFound {
			return "", &NotFoundError{Repo: repo, Path: ""}
		}
		return "", err
	}
	sha, _, err := gh.client.Repositories.GetCommitSHA1(gh.ctx, owner, name, repository.GetDefaultBranch(), "")
	if err != nil {
		return "", err
	}
	return sha, nil
}

// CreateReviewComments posts one PR review containing an inline comment per
// violation, anchored at the violation's patch position. A review with no
// violations posts nothing.
func (gh *GHClient) CreateReviewComments(fr *review.FileReview) error {
	if gh.pr == nil {
		return &NoPRError{}
	}
	if len(fr.Violations) == 0 {
		return nil
	}
	comments := f.Map(fr.Violations, func(violation *review.Violation) *github.DraftReviewComment {
		return &github.DraftReviewComment{
			Path:     github.String(violation.FileName),
			Position: github.Int(violation.Position),
			Body:     github.String(strings.Join(violation.Messages, "<br>")),
		}
	})
	reviewRequest := &github.PullRequestReviewRequest{
		CommitID: gh.pr.Head.SHA,
		Event:    github.String("COMMENT"),
		Comments: comments,
	}
	_, _, err := gh.client.PullRequests.CreateReview(gh.ctx, gh.owner, gh.repo, gh.pr.GetNumber(), reviewRequest)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(gh.infoBuffer, "Posted %d comments on %s\n", len(comments), fr.File.FileName)
	return nil
}

func splitRepo(repo string) (string, string, error) {
	repoSplit := strings.Split(repo, "/")
	if len(repoSplit) != 2 {
		return "", "", fmt.Errorf("invalid repo name: %s", repo)
	}
	return repoSplit[0], repoSplit[1], nil
}

func walkPaginatedApi(apiCall func(int) (*github.Response, error)) error {
	page := 1
	for {
		res, err := apiCall(page)
		if err != nil {
			return err
		}
		if res.NextPage == 0 {
			break
		}
		page = res.NextPage
	}
	return nil
}
