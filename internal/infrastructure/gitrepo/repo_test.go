package gitrepo

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func fakeExec(t *testing.T, wantArgs string, out string, err error) func(context.Context, string, []string) ([]byte, error) {
	t.Helper()
	return func(_ context.Context, _ string, args []string) ([]byte, error) {
		if got := strings.Join(args, " "); got != wantArgs {
			t.Fatalf("unexpected git args: %s (want %s)", got, wantArgs)
		}
		return []byte(out), err
	}
}

func TestInsideWorkTree(t *testing.T) {
	repo := Repo{Exec: fakeExec(t, "rev-parse --is-inside-work-tree", "true\n", nil)}
	inside, err := repo.InsideWorkTree(context.Background())
	if err != nil {
		t.Fatalf("inside work tree: %v", err)
	}
	if !inside {
		t.Fatalf("expected inside work tree")
	}
}

func TestHeadTrimsOutput(t *testing.T) {
	repo := Repo{Exec: fakeExec(t, "rev-parse HEAD", "aaa111\n", nil)}
	hash, err := repo.Head(context.Background())
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if hash != "aaa111" {
		t.Fatalf("unexpected hash: %q", hash)
	}
}

func TestMergedTags(t *testing.T) {
	repo := Repo{Exec: fakeExec(t, "tag --merged HEAD --list v*", "v0.9.0\nv0.10.0\n", nil)}
	tags, err := repo.MergedTags(context.Background(), "v*")
	if err != nil {
		t.Fatalf("merged tags: %v", err)
	}
	if len(tags) != 2 || tags[0] != "v0.9.0" || tags[1] != "v0.10.0" {
		t.Fatalf("unexpected tags: %v", tags)
	}
}

func TestMergedTagsEmpty(t *testing.T) {
	repo := Repo{Exec: fakeExec(t, "tag --merged HEAD --list v*", "\n", nil)}
	tags, err := repo.MergedTags(context.Background(), "v*")
	if err != nil {
		t.Fatalf("merged tags: %v", err)
	}
	if len(tags) != 0 {
		t.Fatalf("expected no tags, got %v", tags)
	}
}

func TestBranchesContainingFiltersDetachedEntries(t *testing.T) {
	out := "* (HEAD detached at aaa111)\n  main\n"
	repo := Repo{Exec: fakeExec(t, "branch --contains aaa111", out, nil)}
	branches, err := repo.BranchesContaining(context.Background(), "aaa111")
	if err != nil {
		t.Fatalf("branches containing: %v", err)
	}
	if len(branches) != 1 || branches[0] != "main" {
		t.Fatalf("unexpected branches: %v", branches)
	}
}

func TestCommitsSinceTag(t *testing.T) {
	repo := Repo{Exec: fakeExec(t, "rev-list --count v1.0.0..HEAD", "4\n", nil)}
	count, err := repo.CommitsSince(context.Background(), "v1.0.0")
	if err != nil {
		t.Fatalf("commits since: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4 commits, got %d", count)
	}
}

func TestCommitsSinceNoTagCountsFromRoot(t *testing.T) {
	repo := Repo{Exec: fakeExec(t, "rev-list --count HEAD", "12\n", nil)}
	count, err := repo.CommitsSince(context.Background(), "")
	if err != nil {
		t.Fatalf("commits since: %v", err)
	}
	if count != 12 {
		t.Fatalf("expected 12 commits, got %d", count)
	}
}

func TestTagCommit(t *testing.T) {
	repo := Repo{Exec: fakeExec(t, "rev-list -n 1 v1.0.0", "bbb222\n", nil)}
	hash, err := repo.TagCommit(context.Background(), "v1.0.0")
	if err != nil {
		t.Fatalf("tag commit: %v", err)
	}
	if hash != "bbb222" {
		t.Fatalf("unexpected hash: %q", hash)
	}
}

func TestRunErrorIncludesOutput(t *testing.T) {
	repo := Repo{Exec: func(context.Context, string, []string) ([]byte, error) {
		return []byte("fatal: not a git repository\n"), errors.New("exit status 128")
	}}
	_, err := repo.Head(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "not a git repository") {
		t.Fatalf("error should carry git output: %v", err)
	}
}
