package attendance

import "testing"

func rec(subjectID string, status Status) Record {
	return Record{SubjectID: subjectID, Status: status, Hours: 1}
}

func TestComputeStatsExcludesNotTaken(t *testing.T) {
	subjects := []Subject{{ID: "s1", Name: "Algebra"}}
	records := []Record{
		rec("s1", StatusPresent),
		rec("s1", StatusPresent),
		rec("s1", StatusAbsent),
		rec("s1", StatusNotTaken),
	}

	stats := ComputeStats(records, subjects)

	if stats.Total != 3 {
		t.Errorf("global total = %d, want 3 (not_taken excluded)", stats.Total)
	}
	if stats.Present != 2 || stats.Absent != 1 || stats.NotTaken != 1 {
		t.Errorf("global counts = %d/%d/%d, want 2/1/1", stats.Present, stats.Absent, stats.NotTaken)
	}

	ss, ok := stats.Subjects["s1"]
	if !ok {
		t.Fatal("missing per-subject entry")
	}
	if ss.Total != 3 || ss.Present != 2 || ss.Absent != 1 || ss.NotTaken != 1 {
		t.Errorf("subject counts = %+v", ss)
	}
	if ss.Percentage != 67 {
		t.Errorf("percentage = %d, want round(2/3*100) = 67", ss.Percentage)
	}
}

func TestComputeStatsZeroDenominator(t *testing.T) {
	subjects := []Subject{{ID: "s1", Name: "Chemistry"}}
	records := []Record{rec("s1", StatusNotTaken), rec("s1", StatusNotTaken)}

	stats := ComputeStats(records, subjects)
	ss := stats.Subjects["s1"]
	if ss.Total != 0 {
		t.Errorf("total = %d, want 0", ss.Total)
	}
	if ss.Percentage != 0 {
		t.Errorf("percentage = %d, want 0 for zero denominator", ss.Percentage)
	}
}

func TestComputeStatsNoRecords(t *testing.T) {
	stats := ComputeStats(nil, []Subject{{ID: "s1", Name: "History"}})
	if stats.Total != 0 {
		t.Errorf("total = %d, want 0", stats.Total)
	}
	if ss := stats.Subjects["s1"]; ss.Percentage != 0 || ss.Name != "History" {
		t.Errorf("unexpected entry %+v", ss)
	}
}

func TestComputeStatsRoundsHalfUp(t *testing.T) {
	// 1 of 8 = 12.5% rounds to 13
	subjects := []Subject{{ID: "s1"}}
	records := []Record{rec("s1", StatusPresent)}
	for i := 0; i < 7; i++ {
		records = append(records, rec("s1", StatusAbsent))
	}
	if got := ComputeStats(records, subjects).Subjects["s1"].Percentage; got != 13 {
		t.Errorf("percentage = %d, want 13", got)
	}
}

func TestComputeStatsScopesBySubject(t *testing.T) {
	subjects := []Subject{{ID: "s1"}, {ID: "s2"}}
	records := []Record{
		rec("s1", StatusPresent),
		rec("s2", StatusAbsent),
	}
	stats := ComputeStats(records, subjects)
	if stats.Subjects["s1"].Percentage != 100 {
		t.Errorf("s1 percentage = %d, want 100", stats.Subjects["s1"].Percentage)
	}
	if stats.Subjects["s2"].Percentage != 0 {
		t.Errorf("s2 percentage = %d, want 0", stats.Subjects["s2"].Percentage)
	}
}
