package models

import "slices"

type ImageStatus string

const (
	ImageStatusDone       ImageStatus = "DONE"
	ImageStatusProcessing ImageStatus = "PROCESSING"
	ImageStatusFailed     ImageStatus = "FAILED"
)

// ImageResource is the upload purpose an image was registered for.
type ImageResource string

const (
	ImageResourcePostContent    ImageResource = "post:content"
	ImageResourceArticleContent ImageResource = "article:content"
	ImageResourceArticleCover   ImageResource = "article:cover"
	ImageResourceSeriesCover    ImageResource = "series:cover"
)

type VideoStatus string

const (
	VideoStatusDone       VideoStatus = "DONE"
	VideoStatusProcessing VideoStatus = "PROCESSING"
	VideoStatusFailed     VideoStatus = "FAILED"
)

type Image struct {
	ID        string        `bson:"id" json:"id"`
	CreatedBy string        `bson:"created_by" json:"createdBy"`
	URL       string        `bson:"url" json:"url"`
	Width     int           `bson:"width" json:"width"`
	Height    int           `bson:"height" json:"height"`
	Status    ImageStatus   `bson:"status" json:"status"`
	Resource  ImageResource `bson:"resource" json:"resource"`
}

func (i Image) IsReady() bool { return i.Status == ImageStatusDone }

func (i Image) IsPostContentResource() bool {
	return i.Resource == ImageResourcePostContent
}

func (i Image) IsArticleContentResource() bool {
	return i.Resource == ImageResourceArticleContent
}

func (i Image) IsCoverResource() bool {
	return i.Resource == ImageResourceArticleCover || i.Resource == ImageResourceSeriesCover
}

type File struct {
	ID        string `bson:"id" json:"id"`
	CreatedBy string `bson:"created_by" json:"createdBy"`
	Name      string `bson:"name" json:"name"`
	MimeType  string `bson:"mime_type" json:"mimeType"`
	Size      int64  `bson:"size" json:"size"`
	URL       string `bson:"url" json:"url"`
}

type Video struct {
	ID           string      `bson:"id" json:"id"`
	CreatedBy    string      `bson:"created_by" json:"createdBy"`
	Name         string      `bson:"name" json:"name"`
	URL          string      `bson:"url" json:"url"`
	ThumbnailURL string      `bson:"thumbnail_url" json:"thumbnailUrl"`
	Status       VideoStatus `bson:"status" json:"status"`
}

func (v Video) IsProcessing() bool { return v.Status == VideoStatusProcessing }

// Media groups every owned attachment of a content.
type Media struct {
	Images []Image `bson:"images" json:"images"`
	Files  []File  `bson:"files" json:"files"`
	Videos []Video `bson:"videos" json:"videos"`
}

func (m Media) IsEmpty() bool {
	return len(m.Images) == 0 && len(m.Files) == 0 && len(m.Videos) == 0
}

func (m Media) Equal(other Media) bool {
	return slices.Equal(m.Images, other.Images) &&
		slices.Equal(m.Files, other.Files) &&
		slices.Equal(m.Videos, other.Videos)
}

func (m Media) ImageIDs() []string {
	ids := make([]string, 0, len(m.Images))
	for _, img := range m.Images {
		ids = append(ids, img.ID)
	}
	return ids
}

func (m Media) clone() Media {
	return Media{
		Images: slices.Clone(m.Images),
		Files:  slices.Clone(m.Files),
		Videos: slices.Clone(m.Videos),
	}
}
