package board

import (
	"reflect"
	"testing"
	"time"

	"github.com/example/comanda/internal/core/order"
)

var testNow = time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

func filterSnapshot() order.Snapshot {
	return order.Snapshot{
		Columns: []order.Column{
			{
				Key: order.StateNew,
				Orders: []order.Order{
					{ID: 1, Customer: "Ana Torres", Channel: order.ChannelWeb, State: order.StateNew, CreatedAt: testNow.Add(-2 * time.Hour)},
					{ID: 2, Customer: "Luis Vega", Channel: order.ChannelPOS, State: order.StateNew, CreatedAt: testNow.AddDate(0, 0, -1)},
					{ID: 3, Customer: "MARTA diaz", Channel: order.ChannelWeb, State: order.StateNew, CreatedAt: testNow.AddDate(0, 0, -5)},
				},
				Count: 3,
			},
			{
				Key: order.StateReady,
				Orders: []order.Order{
					{ID: 4, Customer: "Ana Beltran", Channel: order.ChannelPOS, State: order.StateReady, CreatedAt: testNow.Add(-30 * time.Minute)},
				},
				Count: 1,
			},
		},
	}
}

func columnIDs(snap order.Snapshot, key order.State) []int64 {
	col, _ := snap.Column(key)
	var ids []int64
	for _, o := range col.Orders {
		ids = append(ids, o.ID)
	}
	return ids
}

func TestApplyFilterIsPure(t *testing.T) {
	src := filterSnapshot()
	criteria := Criteria{Date: DateAll, Customer: "ana", Origin: OriginAll, State: StateAll}

	first := ApplyFilter(src, criteria, testNow)
	second := ApplyFilter(src, criteria, testNow)

	if !reflect.DeepEqual(first, second) {
		t.Error("applying the same criteria twice produced different results")
	}
	if src.OrderCount() != 4 {
		t.Errorf("input snapshot was mutated: %d orders left", src.OrderCount())
	}

	// Mutating the filtered view must not leak into the source.
	first.Columns[0].Orders[0].Customer = "changed"
	if src.Columns[0].Orders[0].Customer == "changed" {
		t.Error("filtered view aliases the source snapshot")
	}
}

func TestApplyFilterDateBuckets(t *testing.T) {
	src := filterSnapshot()

	tests := []struct {
		name   string
		bucket DateBucket
		want   []int64
	}{
		{"today", DateToday, []int64{1}},
		{"yesterday", DateYesterday, []int64{2}},
		{"last 7 days", DateLast7Days, []int64{1, 2, 3}},
		{"all", DateAll, []int64{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyFilter(src, Criteria{Date: tt.bucket, Origin: OriginAll, State: StateAll}, testNow)
			if ids := columnIDs(got, order.StateNew); !reflect.DeepEqual(ids, tt.want) {
				t.Errorf("new column ids = %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestApplyFilterDateFallsBackToElapsedBaseline(t *testing.T) {
	src := order.Snapshot{Columns: []order.Column{{
		Key: order.StateNew,
		// No CreatedAt; 50 minutes elapsed puts it inside today.
		Orders: []order.Order{{ID: 9, State: order.StateNew, TotalMinutes: 50}},
	}}}

	got := ApplyFilter(src, Criteria{Date: DateToday, Origin: OriginAll, State: StateAll}, testNow)
	if ids := columnIDs(got, order.StateNew); !reflect.DeepEqual(ids, []int64{9}) {
		t.Errorf("ids = %v, want [9]", ids)
	}
}

func TestApplyFilterCustomer(t *testing.T) {
	src := filterSnapshot()

	got := ApplyFilter(src, Criteria{Date: DateAll, Customer: "ANA", Origin: OriginAll, State: StateAll}, testNow)
	if ids := columnIDs(got, order.StateNew); !reflect.DeepEqual(ids, []int64{1}) {
		t.Errorf("new ids = %v, want [1]", ids)
	}
	if ids := columnIDs(got, order.StateReady); !reflect.DeepEqual(ids, []int64{4}) {
		t.Errorf("ready ids = %v, want [4]", ids)
	}

	// Substring match, not prefix.
	got = ApplyFilter(src, Criteria{Date: DateAll, Customer: "diaz", Origin: OriginAll, State: StateAll}, testNow)
	if ids := columnIDs(got, order.StateNew); !reflect.DeepEqual(ids, []int64{3}) {
		t.Errorf("new ids = %v, want [3]", ids)
	}
}

func TestApplyFilterOrigin(t *testing.T) {
	src := filterSnapshot()

	web := ApplyFilter(src, Criteria{Date: DateAll, Origin: OriginWeb, State: StateAll}, testNow)
	if ids := columnIDs(web, order.StateNew); !reflect.DeepEqual(ids, []int64{1, 3}) {
		t.Errorf("web ids = %v, want [1 3]", ids)
	}

	pos := ApplyFilter(src, Criteria{Date: DateAll, Origin: OriginPOS, State: StateAll}, testNow)
	if ids := columnIDs(pos, order.StateNew); !reflect.DeepEqual(ids, []int64{2}) {
		t.Errorf("pos ids = %v, want [2]", ids)
	}
}

func TestApplyFilterState(t *testing.T) {
	src := filterSnapshot()

	got := ApplyFilter(src, Criteria{Date: DateAll, Origin: OriginAll, State: "ready"}, testNow)
	if ids := columnIDs(got, order.StateNew); ids != nil {
		t.Errorf("new ids = %v, want none", ids)
	}
	if ids := columnIDs(got, order.StateReady); !reflect.DeepEqual(ids, []int64{4}) {
		t.Errorf("ready ids = %v, want [4]", ids)
	}
}

func TestApplyFilterRecomputesCounts(t *testing.T) {
	src := filterSnapshot()
	got := ApplyFilter(src, Criteria{Date: DateAll, Customer: "ana torres", Origin: OriginAll, State: StateAll}, testNow)

	col, _ := got.Column(order.StateNew)
	if col.Count != 1 {
		t.Errorf("new count = %d, want 1", col.Count)
	}
	col, _ = got.Column(order.StateReady)
	if col.Count != 0 {
		t.Errorf("ready count = %d, want 0", col.Count)
	}
}

func TestDefaultCriteriaPassesEverythingButDate(t *testing.T) {
	c := DefaultCriteria()
	if c.Date != DateToday || c.Customer != "" || c.Origin != OriginAll || c.State != StateAll {
		t.Errorf("unexpected defaults: %+v", c)
	}
}
