// Package config loads logdog scan configuration.
//
// # File Formats
//
// The format follows the file extension: .toml is decoded with go-toml,
// .yaml and .yml with yaml.v3. Both map onto the same Config struct:
//
//	phrases = ["fail", "timed out"]
//	mode = "counts"
//	case_insensitive = true
//	text_extensions = [".txt", ".log"]
//	include = "app-*"
//
//	[evtx]
//	max_records = 10000
//	levels = [2]
//
//	[window]
//	from = "2025-03-03 02:00:00"
//	to = "2025-03-03 03:00:00"
//
//	[[folders]]
//	path = "~/logs/web"
//	color = "red"
//	label = "web"
//
// # Resolution
//
// Load("") returns DefaultConfig. An explicit path that does not exist is an
// error. After decoding, LOGDOG_PHRASES and LOGDOG_MODE override the file,
// folder paths are expanded (~ and relative paths become absolute) and
// folders without a color or label get a palette color and their base name.
//
// Folders and phrases may both be empty; the interactive UI collects them.
package config
