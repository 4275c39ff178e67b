package domain

// PackageInfo holds registry metadata for the latest published version
type PackageInfo struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	Description   string `json:"description,omitempty"`
	LastPublished string `json:"lastPublished"`
	URL           string `json:"url"`
}

// DailyDownloads is one day of download counts
type DailyDownloads struct {
	Day       string `json:"day"`
	Downloads int    `json:"downloads"`
}

// DownloadStats holds download counters for a single package
type DownloadStats struct {
	Package string           `json:"package"`
	Weekly  int              `json:"weeklyDownloads"`
	Monthly int              `json:"monthlyDownloads"`
	Daily   []DailyDownloads `json:"dailyDownloads"`
}

// PackageSize holds publish/install sizes in bytes
type PackageSize struct {
	PublishSize int64 `json:"publishSize"`
	InstallSize int64 `json:"installSize"`
}

// PackageSummary combines the three per-package lookups.
// Size is nil when the size service had no answer, the rest of the
// summary is still valid in that case.
type PackageSummary struct {
	Info      PackageInfo   `json:"info"`
	Downloads DownloadStats `json:"downloads"`
	Size      *PackageSize  `json:"packageSize,omitempty"`
}

// NpmOverview is the normalized output of the package-registry provider
type NpmOverview struct {
	Packages []PackageSummary `json:"packages"`
}
