package aggregate_test

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/donorlab/cadence/internal/domain/aggregate"
	"github.com/donorlab/cadence/internal/domain/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func tx(account string, date time.Time, cents int64) model.Transaction {
	return model.Transaction{AccountID: account, Date: date, Amount: model.Money{Cents: cents}}
}

func TestAggregate_Daily(t *testing.T) {
	Convey("Given transactions spanning a week with gaps", t, func() {
		txns := []model.Transaction{
			tx("A", day(2024, time.January, 1), 15000),
			tx("B", day(2024, time.January, 3), 2000),
			tx("A", day(2024, time.January, 8), 10000),
		}

		Convey("When aggregating at day granularity", func() {
			series, err := aggregate.Aggregate(txns, aggregate.Day)
			So(err, ShouldBeNil)

			Convey("Then every calendar day of the span is present", func() {
				So(len(series), ShouldEqual, 8)
				So(series[0].BucketStart, ShouldEqual, day(2024, time.January, 1))
				So(series[7].BucketStart, ShouldEqual, day(2024, time.January, 8))
			})

			Convey("And bucket starts are strictly increasing and contiguous", func() {
				for i := 1; i < len(series); i++ {
					So(series[i].BucketStart, ShouldEqual, series[i-1].BucketStart.AddDate(0, 0, 1))
				}
			})

			Convey("And silent days carry explicit zeros", func() {
				So(series[1].DonationCount, ShouldEqual, 0)
				So(series[1].TotalAmount.Cents, ShouldEqual, 0)
				So(series[2].DonationCount, ShouldEqual, 1) // Jan 3
			})

			Convey("And money is conserved exactly", func() {
				So(series.Total().Cents, ShouldEqual, int64(27000))
			})
		})

		Convey("When the input order is shuffled", func() {
			base, err := aggregate.Aggregate(txns, aggregate.Day)
			So(err, ShouldBeNil)

			shuffled := make([]model.Transaction, len(txns))
			copy(shuffled, txns)
			rng := rand.New(rand.NewSource(7))
			rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

			again, err := aggregate.Aggregate(shuffled, aggregate.Day)
			So(err, ShouldBeNil)

			Convey("Then the output is identical", func() {
				So(again, ShouldResemble, base)
			})
		})
	})

	Convey("Given no transactions", t, func() {
		Convey("Then the series is empty, not an error", func() {
			series, err := aggregate.Aggregate(nil, aggregate.Day)
			So(err, ShouldBeNil)
			So(series, ShouldBeEmpty)
		})
	})

	Convey("Given a transaction with a zero date", t, func() {
		txns := []model.Transaction{{AccountID: "A", Amount: model.Money{Cents: 100}}}

		Convey("Then aggregation fails loudly", func() {
			_, err := aggregate.Aggregate(txns, aggregate.Day)
			So(err, ShouldNotBeNil)
			So(errors.Is(err, aggregate.ErrZeroDate), ShouldBeTrue)
		})
	})
}

func TestAggregate_WeekAndMonth(t *testing.T) {
	Convey("Given transactions across two months", t, func() {
		txns := []model.Transaction{
			tx("A", day(2024, time.January, 2), 1000),  // Tuesday
			tx("A", day(2024, time.January, 31), 2000), // Wednesday
			tx("B", day(2024, time.February, 20), 3000),
		}

		Convey("When aggregating weekly", func() {
			series, err := aggregate.Aggregate(txns, aggregate.Week)
			So(err, ShouldBeNil)

			Convey("Then buckets are Sunday-anchored", func() {
				So(series[0].BucketStart.Weekday(), ShouldEqual, time.Sunday)
				So(series[0].BucketStart, ShouldEqual, day(2023, time.December, 31))
			})

			Convey("And buckets step by seven days", func() {
				for i := 1; i < len(series); i++ {
					So(series[i].BucketStart, ShouldEqual, series[i-1].BucketStart.AddDate(0, 0, 7))
				}
			})

			Convey("And money is conserved", func() {
				So(series.Total().Cents, ShouldEqual, int64(6000))
			})
		})

		Convey("When aggregating monthly", func() {
			series, err := aggregate.Aggregate(txns, aggregate.Month)
			So(err, ShouldBeNil)

			Convey("Then there is one bucket per calendar month", func() {
				So(len(series), ShouldEqual, 2)
				So(series[0].BucketStart, ShouldEqual, day(2024, time.January, 1))
				So(series[1].BucketStart, ShouldEqual, day(2024, time.February, 1))
			})

			Convey("And amounts accumulate within a month", func() {
				So(series[0].TotalAmount.Cents, ShouldEqual, int64(3000))
				So(series[0].DonationCount, ShouldEqual, 2)
			})
		})
	})

	Convey("Given an unknown granularity", t, func() {
		_, err := aggregate.Aggregate([]model.Transaction{tx("A", day(2024, time.March, 1), 100)}, "hour")
		So(err, ShouldNotBeNil)
	})
}

func TestMeanByCalendarField(t *testing.T) {
	Convey("Given a daily series over two full weeks", t, func() {
		// Sundays carry 300, all other days zero activity.
		var txns []model.Transaction
		start := day(2024, time.March, 3) // a Sunday
		txns = append(txns,
			tx("A", start, 30000),
			tx("A", start.AddDate(0, 0, 7), 30000),
			tx("A", start.AddDate(0, 0, 13), 0), // Saturday, zero-amount marker
		)
		series, err := aggregate.Aggregate(txns, aggregate.Day)
		So(err, ShouldBeNil)
		So(len(series), ShouldEqual, 14)

		Convey("When averaging by weekday", func() {
			means := aggregate.MeanByWeekday(series)

			Convey("Then Sunday averages over its observed buckets only", func() {
				So(means[time.Sunday].Amount, ShouldAlmostEqual, 300.0)
				So(means[time.Sunday].Count, ShouldAlmostEqual, 1.0)
			})

			Convey("And silent weekdays average to zero, not absence", func() {
				So(means[time.Monday].Amount, ShouldAlmostEqual, 0.0)
				So(means[time.Monday].Count, ShouldAlmostEqual, 0.0)
			})

			Convey("And all seven weekdays appear in a two-week span", func() {
				So(len(means), ShouldEqual, 7)
			})
		})
	})

	Convey("Given a series confined to one month", t, func() {
		txns := []model.Transaction{
			tx("A", day(2024, time.June, 5), 1000),
			tx("A", day(2024, time.June, 20), 3000),
		}
		series, err := aggregate.Aggregate(txns, aggregate.Day)
		So(err, ShouldBeNil)

		Convey("When averaging by month of year", func() {
			means := aggregate.MeanByMonthOfYear(series)

			Convey("Then unobserved months are omitted entirely", func() {
				So(len(means), ShouldEqual, 1)
				_, ok := means[time.July]
				So(ok, ShouldBeFalse)
			})

			Convey("And June averages over its 16 observed days", func() {
				So(means[time.June].Amount, ShouldAlmostEqual, 40.0/16.0)
			})
		})
	})
}

func TestRebucketAndAlign(t *testing.T) {
	Convey("Given a daily series", t, func() {
		txns := []model.Transaction{
			tx("A", day(2024, time.January, 2), 1000),
			tx("A", day(2024, time.January, 3), 1000),
			tx("B", day(2024, time.February, 10), 5000),
		}
		daily, err := aggregate.Aggregate(txns, aggregate.Day)
		So(err, ShouldBeNil)

		Convey("When rebucketing monthly", func() {
			monthly, err := aggregate.Rebucket(daily, aggregate.Month)
			So(err, ShouldBeNil)

			Convey("Then totals and counts survive the fold", func() {
				So(len(monthly), ShouldEqual, 2)
				So(monthly[0].TotalAmount.Cents, ShouldEqual, int64(2000))
				So(monthly[0].DonationCount, ShouldEqual, 2)
				So(monthly.Total().Cents, ShouldEqual, daily.Total().Cents)
			})
		})

		Convey("When aligning series with different spans", func() {
			other, err := aggregate.Aggregate([]model.Transaction{
				tx("C", day(2024, time.January, 10), 700),
			}, aggregate.Day)
			So(err, ShouldBeNil)

			aligned := aggregate.Align(aggregate.Day, daily, other)

			Convey("Then both series share the union span", func() {
				So(len(aligned[0]), ShouldEqual, len(aligned[1]))
				So(aligned[0][0].BucketStart, ShouldEqual, day(2024, time.January, 2))
				So(aligned[1][len(aligned[1])-1].BucketStart, ShouldEqual, day(2024, time.February, 10))
			})

			Convey("And padding buckets are zero-valued", func() {
				So(aligned[1][0].DonationCount, ShouldEqual, 0)
				So(aligned[1][8].DonationCount, ShouldEqual, 1) // Jan 10
			})
		})

		Convey("When computing monthly means for named series", func() {
			other, err := aggregate.Aggregate([]model.Transaction{
				tx("C", day(2024, time.January, 10), 700),
			}, aggregate.Day)
			So(err, ShouldBeNil)

			means := aggregate.MonthlyMeans(map[string]model.BucketedSeries{
				"all":   daily,
				"other": other,
			})

			Convey("Then each series keeps its own per-month averages", func() {
				So(means, ShouldContainKey, "all")
				So(means, ShouldContainKey, "other")
				So(means["other"][time.January].Amount, ShouldAlmostEqual, 7.0)
				So(means["all"], ShouldContainKey, time.February)
			})
		})
	})
}
