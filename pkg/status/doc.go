// Package status defines the per-file outcome of a codemod run and the summary
// the runner folds those outcomes into.
//
//	+-----------+      +-----------+      +-----------+
//	| pipeline  | ---> |  Outcome  | ---> |  Summary  |
//	| (1 file)  |      | (tagged)  |      | (counts)  |
//	+-----------+      +-----------+      +-----------+
//
// 🎯 Purpose:
// - Classify every processed file as changed, unchanged or errored
// - Keep the error of an errored file next to its path
// - Count outcomes and measure the run's wall-clock time
//
// 🔄 Flow:
// 1. The pipeline returns one Outcome per file
// 2. The runner calls Summary.Add for each Outcome, in order
// 3. The runner calls Summary.Finish once and prints the result
//
// 📝 Design Philosophy:
// An Outcome is a value, not an error. A failing file never stops the run: its
// failure is data that the runner counts and prints.
//
// 🔍 Example:
//
//	var sum status.Summary
//	sum.Found = len(files)
//	for _, f := range files {
//		sum.Add(pipeline.Process(ctx, f, desc, opts))
//	}
//	sum.Finish(start)
//	fmt.Println(status.FormatLine(sum))
package status
