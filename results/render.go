// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package results

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// Render prints the table with a footer giving the displayed-vs-total row
// counts and the number of files the dataset was assembled from.
func Render(w io.Writer, table *Table) {
	if table.Empty() {
		if table.HasMarker {
			fmt.Fprintln(w, "No data files found. The job completed but produced no rows.")
		} else {
			fmt.Fprintln(w, "No data files found and no completion marker present.")
		}
		return
	}

	tw := tablewriter.NewWriter(w)
	tw.SetHeader(table.Columns)
	tw.SetAutoFormatHeaders(false)
	for _, row := range table.Rows {
		cells := make([]string, len(table.Columns))
		for i, column := range table.Columns {
			cells[i] = fmt.Sprintf("%v", row[column])
		}
		tw.Append(cells)
	}
	tw.Render()

	fmt.Fprintf(w, "Showing %d of %d rows\n", len(table.Rows), table.TotalRows)
	fmt.Fprintf(w, "Total files in output: %d\n", table.FileCount)
}
