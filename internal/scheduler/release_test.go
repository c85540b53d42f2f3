package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vertextoedge/torrent-space-guard/internal/domain"
)

func heldRecord(hash string, pausedAt time.Time) domain.PauseRecord {
	return domain.PauseRecord{
		Downloader: "qb-main",
		Hash:       hash,
		Directory:  moviesDir,
		PausedAt:   pausedAt,
	}
}

func TestRelease_ResumesWithinHeadroom(t *testing.T) {
	// Watermark 50 GB, free 70 GB: headroom 20 GB. The 20 GB item fits
	// exactly; the 30 GB item must stay held.
	client := newFakeClient("qb-main",
		queuedItem("fits", moviesDir, gb(20), testEpoch),
		queuedItem("toobig", moviesDir, gb(30), testEpoch),
	)
	space := newFakeSpace()
	space.set(moviesDir, gb(70))
	ledger := newFakeLedger()
	for i, h := range []string{"fits", "toobig"} {
		if err := ledger.Put(heldRecord(h, testEpoch.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatal(err)
		}
	}

	svc, d := testService(moviesDownloader(client), space, ledger)
	report := svc.runCycle(context.Background(), d)

	dr := dirReport(t, report, moviesDir)
	if dr.Status != domain.StatusOK {
		t.Errorf("status = %s, want OK", dr.Status)
	}
	if len(dr.Resumed) != 1 || dr.Resumed[0] != "fits" {
		t.Errorf("resumed = %v, want [fits]", dr.Resumed)
	}
	if ledger.has("qb-main", "fits") {
		t.Error("resumed item still ledgered")
	}
	if !ledger.has("qb-main", "toobig") {
		t.Error("deferred item lost from ledger")
	}
}

func TestRelease_OnlyLedgeredItemsAreResumed(t *testing.T) {
	// A paused item this system never touched is the user's business.
	client := newFakeClient("qb-main",
		queuedItem("users", moviesDir, gb(1), testEpoch),
	)
	space := newFakeSpace()
	space.set(moviesDir, gb(500))
	ledger := newFakeLedger()

	svc, d := testService(moviesDownloader(client), space, ledger)
	report := svc.runCycle(context.Background(), d)

	dr := dirReport(t, report, moviesDir)
	if len(dr.Resumed) != 0 {
		t.Errorf("resumed = %v, want none", dr.Resumed)
	}
	if got := client.resumedHashes(); len(got) != 0 {
		t.Errorf("resume commands = %v, want none", got)
	}
}

func TestRelease_AgeOrderResumesOldestPauseFirst(t *testing.T) {
	client := newFakeClient("qb-main",
		queuedItem("second", moviesDir, gb(5), testEpoch),
		queuedItem("first", moviesDir, gb(5), testEpoch),
	)
	space := newFakeSpace()
	space.set(moviesDir, gb(500))
	ledger := newFakeLedger()
	if err := ledger.Put(heldRecord("first", testEpoch)); err != nil {
		t.Fatal(err)
	}
	if err := ledger.Put(heldRecord("second", testEpoch.Add(time.Hour))); err != nil {
		t.Fatal(err)
	}

	svc, d := testService(moviesDownloader(client), space, ledger)
	svc.runCycle(context.Background(), d)

	got := client.resumedHashes()
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Errorf("resume order = %v, want [first second]", got)
	}
}

func TestRelease_SizeOrderResumesSmallestFirst(t *testing.T) {
	client := newFakeClient("qb-main",
		queuedItem("large", moviesDir, gb(10), testEpoch),
		queuedItem("tiny", moviesDir, gb(1), testEpoch),
	)
	space := newFakeSpace()
	space.set(moviesDir, gb(500))
	ledger := newFakeLedger()
	// The large item was paused first; size order must still win.
	if err := ledger.Put(heldRecord("large", testEpoch)); err != nil {
		t.Fatal(err)
	}
	if err := ledger.Put(heldRecord("tiny", testEpoch.Add(time.Hour))); err != nil {
		t.Fatal(err)
	}

	d := moviesDownloader(client)
	d.ReleaseOrder = ReleaseBySize
	svc, md := testService(d, space, ledger)
	svc.runCycle(context.Background(), md)

	got := client.resumedHashes()
	if len(got) != 2 || got[0] != "tiny" || got[1] != "large" {
		t.Errorf("resume order = %v, want [tiny large]", got)
	}
}

func TestRelease_SmartSkipPassesOversizedItem(t *testing.T) {
	// Headroom 20 GB. With smart skip the 30 GB item is passed over and
	// the 5 GB item behind it still resumes; without it the line stops.
	build := func() (*fakeClient, *fakeSpace, *fakeLedger) {
		client := newFakeClient("qb-main",
			queuedItem("oversized", moviesDir, gb(30), testEpoch),
			queuedItem("modest", moviesDir, gb(5), testEpoch),
		)
		space := newFakeSpace()
		space.set(moviesDir, gb(70))
		ledger := newFakeLedger()
		if err := ledger.Put(heldRecord("oversized", testEpoch)); err != nil {
			t.Fatal(err)
		}
		if err := ledger.Put(heldRecord("modest", testEpoch.Add(time.Minute))); err != nil {
			t.Fatal(err)
		}
		return client, space, ledger
	}

	client, space, ledger := build()
	svc, d := testService(moviesDownloader(client), space, ledger)
	report := svc.runCycle(context.Background(), d)
	dr := dirReport(t, report, moviesDir)
	if len(dr.Resumed) != 1 || dr.Resumed[0] != "modest" {
		t.Errorf("smart skip on: resumed = %v, want [modest]", dr.Resumed)
	}

	client, space, ledger = build()
	dl := moviesDownloader(client)
	dl.SmartSkip = false
	svc, md := testService(dl, space, ledger)
	report = svc.runCycle(context.Background(), md)
	dr = dirReport(t, report, moviesDir)
	if len(dr.Resumed) != 0 {
		t.Errorf("smart skip off: resumed = %v, want none", dr.Resumed)
	}
}

func TestRelease_ActiveCapDefersResumes(t *testing.T) {
	client := newFakeClient("qb-main",
		activeItem("running-a", moviesDir, gb(1), testEpoch),
		activeItem("running-b", moviesDir, gb(1), testEpoch),
		queuedItem("waiting", moviesDir, gb(1), testEpoch),
	)
	space := newFakeSpace()
	space.set(moviesDir, gb(500))
	ledger := newFakeLedger()
	if err := ledger.Put(heldRecord("waiting", testEpoch)); err != nil {
		t.Fatal(err)
	}

	d := moviesDownloader(client)
	d.MaxActive = 2
	svc, md := testService(d, space, ledger)
	report := svc.runCycle(context.Background(), md)

	dr := dirReport(t, report, moviesDir)
	if len(dr.Resumed) != 0 {
		t.Errorf("resumed = %v, want none while cap saturated", dr.Resumed)
	}
	if !ledger.has("qb-main", "waiting") {
		t.Error("deferred item lost from ledger")
	}
}

func TestRelease_CapacityBudgetDefersResumes(t *testing.T) {
	client := newFakeClient("qb-main",
		activeItem("running", moviesDir, gb(8), testEpoch),
		queuedItem("waiting", moviesDir, gb(5), testEpoch),
	)
	space := newFakeSpace()
	space.set(moviesDir, gb(500))
	ledger := newFakeLedger()
	if err := ledger.Put(heldRecord("waiting", testEpoch)); err != nil {
		t.Fatal(err)
	}

	d := moviesDownloader(client)
	d.MaxActiveBytes = gb(10) // 8 GB already committed, 5 GB would overshoot
	svc, md := testService(d, space, ledger)
	report := svc.runCycle(context.Background(), md)

	dr := dirReport(t, report, moviesDir)
	if len(dr.Resumed) != 0 {
		t.Errorf("resumed = %v, want none over capacity budget", dr.Resumed)
	}
}

func TestRelease_CompletedItemBypassesGates(t *testing.T) {
	// A finished item adds no growth: it resumes even with zero headroom
	// and a saturated cap.
	done := queuedItem("done", moviesDir, 0, testEpoch)
	done.SizeTotal = gb(40)
	client := newFakeClient("qb-main",
		activeItem("running", moviesDir, gb(1), testEpoch),
		done,
	)
	space := newFakeSpace()
	space.set(moviesDir, gb(50)) // exactly at watermark, zero headroom
	ledger := newFakeLedger()
	if err := ledger.Put(heldRecord("done", testEpoch)); err != nil {
		t.Fatal(err)
	}

	d := moviesDownloader(client)
	d.MaxActive = 1
	svc, md := testService(d, space, ledger)
	report := svc.runCycle(context.Background(), md)

	dr := dirReport(t, report, moviesDir)
	if len(dr.Resumed) != 1 || dr.Resumed[0] != "done" {
		t.Errorf("resumed = %v, want [done]", dr.Resumed)
	}
	if ledger.has("qb-main", "done") {
		t.Error("completed item still ledgered after resume")
	}
}

func TestRelease_RejectedResumeKeepsLedgerEntry(t *testing.T) {
	client := newFakeClient("qb-main",
		queuedItem("stuck", moviesDir, gb(1), testEpoch),
	)
	client.resumeErr = map[string]error{"stuck": errors.New("torrent not found")}
	space := newFakeSpace()
	space.set(moviesDir, gb(500))
	ledger := newFakeLedger()
	if err := ledger.Put(heldRecord("stuck", testEpoch)); err != nil {
		t.Fatal(err)
	}

	svc, d := testService(moviesDownloader(client), space, ledger)
	report := svc.runCycle(context.Background(), d)

	dr := dirReport(t, report, moviesDir)
	if len(dr.Resumed) != 0 {
		t.Errorf("resumed = %v, want none", dr.Resumed)
	}
	if !ledger.has("qb-main", "stuck") {
		t.Error("rejected resume must keep the ledger entry")
	}
}
