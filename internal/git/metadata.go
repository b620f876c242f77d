// Package git reads repository metadata recorded with each build summary.
package git

import (
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"go.trai.ch/zerr"
)

// ErrNoRepo is returned when root is not inside a git work tree.
var ErrNoRepo = zerr.New("not a git repository")

// Metadata identifies the revision a build ran on.
type Metadata struct {
	Repo   string
	Commit string
	Branch string
}

// RepoMetadata opens the repository containing root, searching parent
// directories. Fields that cannot be resolved stay empty; an unborn HEAD is
// not an error.
func RepoMetadata(root string) (Metadata, error) {
	var md Metadata
	repo, err := gogit.PlainOpenWithOptions(root, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return md, zerr.With(zerr.Wrap(ErrNoRepo, err.Error()), "root", root)
	}
	if remote, err := repo.Remote("origin"); err == nil {
		if urls := remote.Config().URLs; len(urls) > 0 {
			md.Repo = shortRepo(urls[0])
		}
	}
	head, err := repo.Head()
	if err != nil {
		return md, nil
	}
	md.Commit = head.Hash().String()
	if head.Name().IsBranch() {
		md.Branch = head.Name().Short()
	}
	return md, nil
}

// shortRepo keeps owner/name for hosted remotes.
func shortRepo(url string) string {
	s := strings.TrimSuffix(strings.TrimSpace(url), ".git")
	for _, host := range []string{"github.com/", "gitlab.com/", "bitbucket.org/"} {
		if i := strings.Index(s, host); i >= 0 {
			return s[i+len(host):]
		}
	}
	if i := strings.LastIndex(s, ":"); i >= 0 && !strings.Contains(s, "://") {
		return s[i+1:]
	}
	return s
}
