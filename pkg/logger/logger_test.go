package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When initialized with defaults", func() {
			So(Init(), ShouldBeNil)

			Convey("Then Get should return a usable logger", func() {
				So(Get(), ShouldNotBeNil)
				So(Sync(), ShouldBeNil)
			})
		})

		Convey("When initialized with an unknown format", func() {
			err := Init(WithFormat("xml"))

			Convey("Then it should fail", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "unknown log format")
			})
		})
	})
}

func TestLoggerOutput(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithWriter(&buf), WithFormat(FormatJSON)), ShouldBeNil)
		So(SetLevelString("info"), ShouldBeNil)
		ctx := context.Background()

		Convey("When logging through a named logger with fields", func() {
			Named("sink").With(String("run_id", "r-1")).Info(ctx, "record appended", Int("line", 7))

			Convey("Then the line should carry component, fields and source", func() {
				var entry map[string]any
				So(json.Unmarshal(buf.Bytes(), &entry), ShouldBeNil)
				So(entry["msg"], ShouldEqual, "record appended")
				So(entry["component"], ShouldEqual, "sink")
				So(entry["run_id"], ShouldEqual, "r-1")
				So(entry["line"], ShouldEqual, float64(7))
				So(entry["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When logging below the configured level", func() {
			Get().Debug(ctx, "hidden")

			Convey("Then nothing should be written", func() {
				So(buf.Len(), ShouldEqual, 0)
			})
		})

		Convey("When the level is lowered to debug", func() {
			So(SetLevelString("DEBUG"), ShouldBeNil)
			defer func() { _ = SetLevelString("info") }()
			Get().Debug(ctx, "visible")

			Convey("Then debug lines should be written", func() {
				So(strings.Contains(buf.String(), "visible"), ShouldBeTrue)
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		for _, level := range []string{"debug", "info", "", "warn", "warning", "ERROR"} {
			So(SetLevelString(level), ShouldBeNil)
		}
		So(SetLevelString("verbose"), ShouldNotBeNil)
		_ = SetLevelString("info")
	})
}
