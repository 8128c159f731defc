package marketplace

// QueryFlag selects which information is included when reading published
// extensions. Flags are OR-combined in the query payload.
//
// See: https://github.com/microsoft/azure-devops-node-api/blob/master/api/interfaces/GalleryInterfaces.ts
type QueryFlag int

const (
	FlagNone                       QueryFlag = 0
	FlagIncludeVersions            QueryFlag = 1
	FlagIncludeFiles               QueryFlag = 2
	FlagIncludeCategoryAndTags     QueryFlag = 4
	FlagIncludeSharedAccounts      QueryFlag = 8
	FlagIncludeVersionProperties   QueryFlag = 16
	FlagExcludeNonValidated        QueryFlag = 32
	FlagIncludeInstallationTargets QueryFlag = 64
	FlagIncludeAssetURI            QueryFlag = 128
	FlagIncludeStatistics          QueryFlag = 256
	FlagIncludeLatestVersionOnly   QueryFlag = 512
	FlagUseFallbackAssetURI        QueryFlag = 1024
	FlagIncludeMetadata            QueryFlag = 2048
)

// FilterType identifies the criterion an extensionquery filter matches on.
//
// See: https://github.com/microsoft/azure-devops-node-api/blob/master/api/interfaces/GalleryInterfaces.ts
type FilterType int

const (
	FilterTag           FilterType = 1
	FilterDisplayName   FilterType = 2
	FilterID            FilterType = 4
	FilterCategory      FilterType = 5
	FilterName          FilterType = 7
	FilterSearchText    FilterType = 10
	FilterPublisherName FilterType = 18
	FilterExtensionName FilterType = 24
)

// queryRequest is the extensionquery POST payload.
type queryRequest struct {
	Filters    []queryFilter `json:"filters"`
	AssetTypes []string      `json:"assetTypes"`
	Flags      QueryFlag     `json:"flags"`
}

type queryFilter struct {
	PageNumber int             `json:"pageNumber"`
	PageSize   int             `json:"pageSize"`
	Criteria   []queryCriteria `json:"criteria"`
}

type queryCriteria struct {
	FilterType FilterType `json:"filterType"`
	Value      string     `json:"value"`
}

// queryResponse is the subset of the extensionquery response we consume.
// Platform-specific builds show up as separate version records, but with
// FlagIncludeLatestVersionOnly they all carry the same version string.
type queryResponse struct {
	Results []struct {
		Extensions []struct {
			Versions []struct {
				Version string `json:"version"`
			} `json:"versions"`
		} `json:"extensions"`
	} `json:"results"`
}
