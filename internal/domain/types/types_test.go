package types_test

import (
	"encoding/json"
	"testing"

	types "github.com/okian/vidmatch/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSummary(t *testing.T) {
	Convey("Given a partial run summary", t, func() {
		s := types.Summary{Total: 10, Processed: 4, Matched: 1, Unmatched: 2, Failed: 1}

		Convey("Then derived values should follow the counts", func() {
			So(s.Remaining(), ShouldEqual, 6)
			So(s.MatchRate(), ShouldEqual, 0.25)
		})
	})

	Convey("Given an empty summary", t, func() {
		var s types.Summary

		Convey("Then derived values should be zero", func() {
			So(s.Remaining(), ShouldEqual, 0)
			So(s.MatchRate(), ShouldEqual, 0.0)
		})
	})

	Convey("Given a summary serialized for the stats endpoint", t, func() {
		raw, err := json.Marshal(types.Summary{RunID: "r1", Running: true, Total: 3})
		So(err, ShouldBeNil)

		Convey("Then it should use snake_case keys", func() {
			var fields map[string]any
			So(json.Unmarshal(raw, &fields), ShouldBeNil)
			So(fields, ShouldContainKey, "run_id")
			So(fields["running"], ShouldEqual, true)
			So(fields["total"], ShouldEqual, float64(3))
		})
	})
}
