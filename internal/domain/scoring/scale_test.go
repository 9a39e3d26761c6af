package scoring_test

import (
	"errors"
	"testing"

	"github.com/okian/epp/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestScale(t *testing.T) {
	Convey("Given candidate scales", t, func() {
		Convey("When min and max are inside their domains", func() {
			for _, mn := range []int{0, 1} {
				for _, mx := range []int{2, 3, 4, 5} {
					_, err := scoring.NewScale(mn, mx)
					So(err, ShouldBeNil)
				}
			}
		})

		Convey("When min or max are outside their domains", func() {
			for _, s := range []scoring.Scale{{Min: 2, Max: 5}, {Min: -1, Max: 5}, {Min: 1, Max: 1}, {Min: 1, Max: 6}, {Min: 0, Max: 0}} {
				err := s.Validate()
				So(errors.Is(err, scoring.ErrInvalidScale), ShouldBeTrue)
			}
		})
	})

	Convey("Given the named presets", t, func() {
		Convey("Then they resolve case-insensitively", func() {
			s, err := scoring.Preset("ele400")
			So(err, ShouldBeNil)
			So(s, ShouldResemble, scoring.Scale{Min: 1, Max: 5})

			s, err = scoring.Preset("ELE795")
			So(err, ShouldBeNil)
			So(s, ShouldResemble, scoring.Scale{Min: 0, Max: 3})
			So(s.Name(), ShouldEqual, scoring.PresetELE795)
		})

		Convey("Then an unknown preset is rejected", func() {
			_, err := scoring.Preset("ELE999")
			So(errors.Is(err, scoring.ErrInvalidScale), ShouldBeTrue)
		})

		Convey("Then descriptions name the scheme when there is one", func() {
			So(scoring.DefaultScale.Describe(), ShouldContainSubstring, "ELE400")
			So(scoring.Scale{Min: 0, Max: 4}.Describe(), ShouldEqual, "scoring with aspect min = 0 and aspect max = 4")
		})
	})
}
