// Package operation drives a codemod run over a directory.
//
//	+-------------+     +------------+     +------------+
//	|   plugin    |---->|  discover  |---->|  pipeline  |  (one file at a time)
//	|   (Load)    |     |  (Files)   |     | (Process)  |
//	+-------------+     +------------+     +-----+------+
//	                                             |
//	                                       +-----v------+
//	                                       |   status   |
//	                                       | (Summary)  |
//	                                       +------------+
//
// 🎯 Purpose:
// - Loads the plugin once and reuses it for every file
// - Processes files sequentially in discovery order
// - Folds every outcome into the run summary and prints it
//
// 🔄 Flow:
// 1. Load the plugin (fails the run)
// 2. Discover files (fails the run when the input is not a directory)
// 3. Print the number of files found
// 4. Process each file, printing changed and errored files
// 5. Print the summary
//
// ⚠️ A file that fails to read, parse, transform, format or write is reported
// and counted; the run goes on with the next file.
package operation
