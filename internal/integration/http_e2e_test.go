//go:build integration || !unit

package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	server "github.com/MovieMinds2/Client/internal/adapters/http_server"
	"github.com/MovieMinds2/Client/internal/adapters/reviewapi"
	"github.com/MovieMinds2/Client/internal/domain"
	"github.com/MovieMinds2/Client/internal/reviews"
	"github.com/MovieMinds2/Client/internal/reviewsvc"
	mysqlrepo "github.com/MovieMinds2/Client/internal/storage/mysql"
)

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/sql)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

// The whole path in one test: MySQL in a container, the review backend
// mounted on a real router, the HTTP client in front of it, and the
// client-side collection reconciling on top. What a browser session
// does, minus the browser.
func TestHTTP_EndToEnd_ReviewLifecycle(t *testing.T) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=moviereview",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "moviereview")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)

	// Real backend: repo, policy, handlers, router.
	svc := reviewsvc.New(mysqlrepo.New(db), reviewsvc.Policy{
		SingleReviewPerMovie: true,
		ProfanityWords:       []string{"garbage"},
	})
	srv := server.New()
	reviewsvc.Mount(srv, &reviewsvc.Handlers{Svc: svc})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	client := reviewapi.New(ts.URL, 50)
	ctx := context.Background()
	ana := domain.Viewer{ID: "u1", Name: "ana"}
	bob := domain.Viewer{ID: "u2", Name: "bob"}
	const movieID = int64(550)

	col := reviews.NewCollection(client, movieID)
	if err := col.Load(ctx, ana); err != nil {
		t.Fatalf("initial load: %v", err)
	}
	if rs, _ := col.Snapshot(); len(rs) != 0 {
		t.Fatalf("fresh movie must have no reviews, got %d", len(rs))
	}

	// Submit, then a duplicate, then profanity.
	draft := domain.ReviewDraft{MovieID: movieID, MovieTitle: "Fight Club", Score: 5, Content: "still holds up"}
	if err := col.Submit(ctx, ana, draft); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := col.Submit(ctx, ana, draft); !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("second submit: want ErrDuplicate, got %v", err)
	}
	bad := draft
	bad.Content = "absolute garbage"
	if err := col.Submit(ctx, bob, bad); !errors.Is(err, domain.ErrDisallowed) {
		t.Fatalf("profane submit: want ErrDisallowed, got %v", err)
	}

	rs, avg := col.Snapshot()
	if len(rs) != 1 || avg != 5 {
		t.Fatalf("after submit: reviews=%d avg=%v", len(rs), avg)
	}
	id := rs[0].ID

	// Bob likes it; the optimistic apply must survive settlement.
	bobCol := reviews.NewCollection(client, movieID)
	if err := bobCol.Load(ctx, bob); err != nil {
		t.Fatalf("load as bob: %v", err)
	}
	if err := bobCol.ToggleLike(ctx, bob, id); err != nil {
		t.Fatalf("toggle like: %v", err)
	}
	rv, ok := bobCol.Get(id)
	if !ok || rv.LikeCount != 1 || !rv.LikedByViewer {
		t.Fatalf("like state after toggle: %+v", rv)
	}
	if err := bobCol.Load(ctx, bob); err != nil {
		t.Fatalf("reload as bob: %v", err)
	}
	rv, _ = bobCol.Get(id)
	if rv.LikeCount != 1 || !rv.LikedByViewer {
		t.Fatalf("like state after reload: %+v", rv)
	}

	// The feed sees the review too, with pagination metadata.
	feed := reviews.NewFeed(client, 15)
	if err := feed.ChangeSort(ctx, bob, domain.SortMostLiked); err != nil {
		t.Fatalf("feed: %v", err)
	}
	fv := feed.Snapshot()
	if len(fv.Reviews) != 1 || fv.Reviews[0].ID != id {
		t.Fatalf("feed contents: %+v", fv.Reviews)
	}
	if fv.HasNextPage {
		t.Fatalf("one review must not page")
	}

	// The author's own list spans movies and carries only their rows.
	mine, err := client.FetchMyReviews(ctx, ana)
	if err != nil {
		t.Fatalf("my reviews: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != id || mine[0].AuthorID != ana.ID {
		t.Fatalf("unexpected authored list: %+v", mine)
	}
	if _, err := client.FetchMyReviews(ctx, domain.Viewer{}); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("anonymous my-reviews: want ErrUnauthenticated, got %v", err)
	}

	// Only the author can edit or delete.
	if err := bobCol.Update(ctx, bob, id, "mine now"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("foreign update: want ErrForbidden, got %v", err)
	}
	if err := col.Update(ctx, ana, id, "second thoughts"); err != nil {
		t.Fatalf("author update: %v", err)
	}
	rv, _ = col.Get(id)
	if rv.Content != "second thoughts" {
		t.Fatalf("content after update: %q", rv.Content)
	}
	if err := col.Delete(ctx, ana, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if rs, _ := col.Snapshot(); len(rs) != 0 {
		t.Fatalf("collection must be empty after delete, got %d", len(rs))
	}
}
