package constants

import (
	"io/fs"
	"time"
)

const (
	// DefaultDirPerm is the default permission used when creating directories.
	DefaultDirPerm fs.FileMode = 0o755
	// DefaultFilePerm is the default permission used when creating files.
	DefaultFilePerm fs.FileMode = 0o644
)

const (
	// NotApplicable marks a result field that is switched off in the field mapping.
	NotApplicable = "NA"
	// DefaultURLColumn is the header of the inventory column holding target URLs.
	DefaultURLColumn = "URL"
	// HeaderRow is the 1-based row holding column headers; data starts right below it.
	HeaderRow = 1
	// FirstDataRow is the first row holding a target.
	FirstDataRow = HeaderRow + 1
)

const (
	// DefaultCellCharLimit is the per-cell character cap of the result store.
	DefaultCellCharLimit = 50000
	// TruncationMarker is appended to text cut down to fit a cell.
	TruncationMarker = "...(more)"
	// DefaultMaxRedirects bounds the number of hops recorded per redirect trace.
	DefaultMaxRedirects = 10
	// DefaultFetchTimeout is the timeout of the final content GET.
	DefaultFetchTimeout = 10 * time.Second
	// DefaultTargetInterval paces consecutive targets.
	DefaultTargetInterval = time.Second
	// DefaultWriteInterval paces consecutive cell writes.
	DefaultWriteInterval = 500 * time.Millisecond
	// DefaultTLSPort is dialed when the host carries no port.
	DefaultTLSPort = "443"
	// DefaultTimezone is used for backup page names and completion dates.
	DefaultTimezone = "Asia/Taipei"
	// CompletionDateLayout formats the update-at field.
	CompletionDateLayout = "2006/01/02"
	// BackupSuffixLayout formats the date suffix of backup page names.
	BackupSuffixLayout = "20060102"
)
