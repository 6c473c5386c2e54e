package search_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/okian/vidmatch/internal/adapters/search"
	"github.com/okian/vidmatch/internal/domain/model"
	"github.com/okian/vidmatch/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

type lookupFunc func(ctx context.Context, query string) ([]model.Candidate, error)

func (f lookupFunc) Search(ctx context.Context, query string) []model.Candidate {
	c, _ := f(ctx, query)
	return c
}

func (f lookupFunc) Lookup(ctx context.Context, query string) ([]model.Candidate, error) {
	return f(ctx, query)
}

// queryCount reads the search query counter for one result label.
func queryCount(result string) float64 {
	families, err := metrics.GetRegistry().Gather()
	So(err, ShouldBeNil)
	for _, mf := range families {
		if !strings.HasSuffix(mf.GetName(), "search_queries_total") {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "result" && lp.GetValue() == result {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestBounded(t *testing.T) {
	Convey("Given a provider that answers promptly", t, func() {
		p := search.Bounded(search.ProviderFunc(func(_ context.Context, q string) []model.Candidate {
			return []model.Candidate{{ID: "a", Title: q}}
		}), time.Second)

		Convey("Then its candidates should pass through", func() {
			got := p.Search(context.Background(), "Nosferatu 1922 full movie")
			So(len(got), ShouldEqual, 1)
			So(got[0].Title, ShouldEqual, "Nosferatu 1922 full movie")
		})
	})

	Convey("Given a provider that ignores its context", t, func() {
		release := make(chan struct{})
		defer close(release)
		p := search.Bounded(search.ProviderFunc(func(_ context.Context, _ string) []model.Candidate {
			<-release
			return []model.Candidate{{ID: "late"}}
		}), 20*time.Millisecond)

		Convey("Then the query should be abandoned at the deadline", func() {
			start := time.Now()
			got := p.Search(context.Background(), "q")
			So(got, ShouldBeEmpty)
			So(time.Since(start), ShouldBeLessThan, time.Second)
		})
	})

	Convey("Given a cancelled parent context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		p := search.Bounded(search.ProviderFunc(func(ctx context.Context, _ string) []model.Candidate {
			<-ctx.Done()
			return nil
		}), time.Minute)

		Convey("Then the query should return empty", func() {
			So(p.Search(ctx, "q"), ShouldBeEmpty)
		})
	})

	Convey("Given a run cancelled while a query is in flight", t, func() {
		release := make(chan struct{})
		defer close(release)
		p := search.Bounded(search.ProviderFunc(func(_ context.Context, _ string) []model.Candidate {
			<-release
			return nil
		}), time.Minute)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		timeouts, cancelled := queryCount(metrics.QueryTimeout), queryCount(metrics.QueryCancelled)
		So(p.Search(ctx, "q"), ShouldBeEmpty)

		Convey("Then it should be counted as cancelled, not timed out", func() {
			So(queryCount(metrics.QueryCancelled)-cancelled, ShouldEqual, 1)
			So(queryCount(metrics.QueryTimeout)-timeouts, ShouldEqual, 0)
		})
	})

	Convey("Given a query that outlives its deadline", t, func() {
		release := make(chan struct{})
		defer close(release)
		p := search.Bounded(search.ProviderFunc(func(_ context.Context, _ string) []model.Candidate {
			<-release
			return nil
		}), 10*time.Millisecond)

		timeouts, cancelled := queryCount(metrics.QueryTimeout), queryCount(metrics.QueryCancelled)
		So(p.Search(context.Background(), "q"), ShouldBeEmpty)

		Convey("Then it should be counted as a timeout", func() {
			So(queryCount(metrics.QueryTimeout)-timeouts, ShouldEqual, 1)
			So(queryCount(metrics.QueryCancelled)-cancelled, ShouldEqual, 0)
		})
	})

	Convey("Given a provider that panics", t, func() {
		p := search.Bounded(search.ProviderFunc(func(_ context.Context, _ string) []model.Candidate {
			panic("boom")
		}), time.Second)

		Convey("Then the panic should become an empty result", func() {
			So(func() { p.Search(context.Background(), "q") }, ShouldNotPanic)
			So(p.Search(context.Background(), "q"), ShouldBeEmpty)
		})
	})

	Convey("Given a provider that reports errors", t, func() {
		p := search.Bounded(lookupFunc(func(_ context.Context, _ string) ([]model.Candidate, error) {
			return []model.Candidate{{ID: "kept"}}, search.ErrMalformedOutput
		}), time.Second)

		Convey("Then candidates decoded before the error should be kept", func() {
			got := p.Search(context.Background(), "q")
			So(len(got), ShouldEqual, 1)
			So(got[0].ID, ShouldEqual, "kept")
		})
	})
}

func TestYTDLP(t *testing.T) {
	Convey("Given a yt-dlp provider", t, func() {
		y := search.NewYTDLP(search.WithResultsPerQuery(5), search.WithExecutable(""))

		Convey("Then the search URL should request the configured hit count", func() {
			So(y.SearchURL("Nosferatu 1922 full movie"), ShouldEqual, "ytsearch5:Nosferatu 1922 full movie")
			So(search.NewYTDLP().SearchURL("x"), ShouldEqual, "ytsearch3:x")
		})
	})
}

func TestCheckBinary(t *testing.T) {
	Convey("Given a missing executable", t, func() {
		_, err := search.CheckBinary("definitely-not-a-real-binary-vidmatch")

		Convey("Then it should report ErrBinaryNotFound", func() {
			So(errors.Is(err, search.ErrBinaryNotFound), ShouldBeTrue)
		})
	})

	Convey("Given an executable path", t, func() {
		exe, err := os.Executable()
		So(err, ShouldBeNil)

		Convey("Then it should resolve", func() {
			resolved, err := search.CheckBinary(exe)
			So(err, ShouldBeNil)
			So(resolved, ShouldNotBeEmpty)
		})
	})
}
