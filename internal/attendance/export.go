package attendance

import (
	"encoding/csv"
	"io"
)

var csvHeader = []string{"Date", "Day", "Clock In", "Clock Out", "In Status", "Out Status"}

// WriteCSV writes a personal history export.
func WriteCSV(w io.Writer, logs []Log) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, l := range logs {
		row := []string{
			l.ClockIn.Format("Mon, Jan 2, 2006"),
			l.Day,
			l.ClockIn.Format("15:04"),
			FormatClock(l.ClockOut),
			l.InStatus,
			l.OutStatus,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteEntriesCSV writes the admin export with owner columns prepended.
func WriteEntriesCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"Name", "Email"}, csvHeader...)); err != nil {
		return err
	}
	for _, e := range entries {
		row := []string{
			e.UserName,
			e.UserEmail,
			e.ClockIn.Format("Mon, Jan 2, 2006"),
			e.Day,
			e.ClockIn.Format("15:04"),
			FormatClock(e.ClockOut),
			e.InStatus,
			e.OutStatus,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
