package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/motion/internal/adapters/watch"
	. "github.com/smartystreets/goconvey/convey"
)

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestFileWatcher(t *testing.T) {
	Convey("Given a watched data file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "actions.txt")
		So(os.WriteFile(path, []byte("1,2,3,lift\n"), 0o600), ShouldBeNil)

		var calls atomic.Int32
		var gotPath atomic.Value
		w, err := watch.New(path, func(_ context.Context, p string) error {
			gotPath.Store(p)
			calls.Add(1)
			return nil
		}, watch.WithDebounce(50*time.Millisecond))
		So(err, ShouldBeNil)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		So(w.Start(ctx), ShouldBeNil)
		defer w.Stop()

		Convey("When the file is written several times in a burst", func() {
			for i := 0; i < 5; i++ {
				So(os.WriteFile(path, []byte("4,5,6,sweep\n"), 0o600), ShouldBeNil)
			}

			Convey("Then the handler runs once for the burst", func() {
				So(waitFor(func() bool { return calls.Load() >= 1 }), ShouldBeTrue)
				time.Sleep(150 * time.Millisecond)
				So(calls.Load(), ShouldEqual, 1)
				abs, _ := filepath.Abs(path)
				So(gotPath.Load(), ShouldEqual, abs)
			})
		})

		Convey("When a sibling file changes", func() {
			So(os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o600), ShouldBeNil)

			Convey("Then the handler is not called", func() {
				time.Sleep(200 * time.Millisecond)
				So(calls.Load(), ShouldEqual, 0)
			})
		})

		Convey("When the file is replaced by rename", func() {
			tmp := filepath.Join(dir, "actions.tmp")
			So(os.WriteFile(tmp, []byte("7,8,9,lift\n"), 0o600), ShouldBeNil)
			So(os.Rename(tmp, path), ShouldBeNil)

			Convey("Then the handler runs", func() {
				So(waitFor(func() bool { return calls.Load() >= 1 }), ShouldBeTrue)
			})
		})

		Convey("When the watcher is stopped twice", func() {
			So(w.Stop(), ShouldBeNil)
			So(w.Stop(), ShouldBeNil)
		})
	})

	Convey("Given an empty path", t, func() {
		_, err := watch.New("", func(context.Context, string) error { return nil })
		So(err, ShouldNotBeNil)
	})
}
