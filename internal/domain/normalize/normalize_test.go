package normalize_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/donorlab/cadence/internal/domain/model"
	"github.com/donorlab/cadence/internal/domain/normalize"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func tx(account string, date time.Time, cents int64) model.Transaction {
	return model.Transaction{AccountID: account, Date: date, Amount: model.Money{Cents: cents}}
}

func TestNormalize(t *testing.T) {
	ctx := context.Background()

	Convey("Given a ledger with same-account same-day duplicates", t, func() {
		raw := []model.Transaction{
			tx("A", day(2024, time.January, 1), 10000),
			tx("A", day(2024, time.January, 1), 5000),
			tx("A", day(2024, time.January, 8), 10000),
			tx("B", day(2024, time.January, 3), 2000),
		}

		Convey("When normalizing with the sum policy", func() {
			n := normalize.New(normalize.WithAmountPolicy(normalize.AmountSum))
			out, stats, err := n.Normalize(ctx, raw)
			So(err, ShouldBeNil)

			Convey("Then duplicates collapse to one row per account per day", func() {
				So(len(out), ShouldEqual, 3)
				So(stats.RowsIn, ShouldEqual, 4)
				So(stats.RowsOut, ShouldEqual, 3)
				So(stats.Collapsed, ShouldEqual, 1)
			})

			Convey("And the collapsed row carries the summed amount", func() {
				So(out[0].AccountID, ShouldEqual, "A")
				So(out[0].Amount.Cents, ShouldEqual, int64(15000))
			})

			Convey("And output is sorted by date then account", func() {
				So(out[0].Date, ShouldEqual, day(2024, time.January, 1))
				So(out[1].AccountID, ShouldEqual, "B")
				So(out[2].Date, ShouldEqual, day(2024, time.January, 8))
			})
		})

		Convey("When normalizing with the first policy", func() {
			n := normalize.New(normalize.WithAmountPolicy(normalize.AmountFirst))
			out, stats, err := n.Normalize(ctx, raw)
			So(err, ShouldBeNil)

			Convey("Then the first-seen amount survives and the rest is discarded", func() {
				So(stats.Collapsed, ShouldEqual, 1)
				So(out[0].Amount.Cents, ShouldEqual, int64(10000))
			})
		})

		Convey("When the ledger rows arrive in a different order", func() {
			n := normalize.New()
			base, _, err := n.Normalize(ctx, raw)
			So(err, ShouldBeNil)

			reversed := []model.Transaction{raw[3], raw[2], raw[1], raw[0]}
			// The sum policy is order-independent; only "first" depends on
			// ledger row order, by definition.
			again, _, err := n.Normalize(ctx, reversed)
			So(err, ShouldBeNil)
			So(again, ShouldResemble, base)
		})
	})

	Convey("Given timestamps with time-of-day noise", t, func() {
		raw := []model.Transaction{
			{AccountID: "A", Date: time.Date(2024, time.March, 5, 9, 30, 0, 0, time.UTC), Amount: model.Money{Cents: 100}},
			{AccountID: "A", Date: time.Date(2024, time.March, 5, 22, 0, 0, 0, time.UTC), Amount: model.Money{Cents: 200}},
		}

		Convey("Then both land on the same calendar day and collapse", func() {
			out, stats, err := normalize.New().Normalize(context.Background(), raw)
			So(err, ShouldBeNil)
			So(stats.Collapsed, ShouldEqual, 1)
			So(out[0].Date, ShouldEqual, day(2024, time.March, 5))
		})
	})

	Convey("Given a row with a zero date", t, func() {
		raw := []model.Transaction{
			tx("A", day(2024, time.January, 1), 100),
			{AccountID: "B", Amount: model.Money{Cents: 100}},
		}

		Convey("Then normalization rejects the whole run", func() {
			_, _, err := normalize.New().Normalize(context.Background(), raw)
			So(err, ShouldNotBeNil)
			So(errors.Is(err, normalize.ErrZeroDate), ShouldBeTrue)
		})
	})

	Convey("Given an empty ledger", t, func() {
		out, stats, err := normalize.New().Normalize(context.Background(), nil)
		So(err, ShouldBeNil)
		So(out, ShouldBeEmpty)
		So(stats.RowsIn, ShouldEqual, 0)
	})
}
