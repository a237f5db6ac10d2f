package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the archive schema
var DatabaseModels = []interface{}{
	&ArchiveInfo{},
	&Sample{},
	&SampleTensor{},
}

// ArchiveInfo describes the archive as a whole
type ArchiveInfo struct {
	gorm.Model
	Name        string `json:"name" gorm:"size:127"`
	SourcePath  string `json:"sourcePath" gorm:"size:1024"`
	SourceType  string `json:"sourceType" gorm:"size:32"`
	SampleCount int    `json:"sampleCount"`
}

func (*ArchiveInfo) TableName() string {
	return "archive_infos"
}

////////////////////////
// SAMPLE MODELS
////////////////////////

// Sample is one record of the dataset. Well-known fields get typed nullable
// columns; any field that does not fit its column lives in Extra. FieldOrder
// keeps the original field order so records reload unchanged.
type Sample struct {
	ID         uint           `json:"id" gorm:"primarykey"`
	Position   int            `json:"position" gorm:"index:idx_sample_position"`
	FieldOrder datatypes.JSON `json:"fieldOrder"`

	VideoName      *string `json:"videoName" gorm:"size:512"`
	MotionType     *string `json:"motionType" gorm:"size:127;index:idx_sample_motion_type"`
	CameraView     *string `json:"cameraView" gorm:"size:64"`
	OriginalSeqLen *int64  `json:"originalSeqLen"`

	AlignedStartFrame *int64 `json:"alignedStartFrame"`
	AlignedEndFrame   *int64 `json:"alignedEndFrame"`
	AlignedSeqLen     *int64 `json:"alignedSeqLen"`
	ErrorStartFrame   *int64 `json:"errorStartFrame"`
	ErrorEndFrame     *int64 `json:"errorEndFrame"`
	ErrorSeqLen       *int64 `json:"errorSeqLen"`
	GtStartFrame      *int64 `json:"gtStartFrame"`
	GtEndFrame        *int64 `json:"gtEndFrame"`
	GtSeqLen          *int64 `json:"gtSeqLen"`

	Labels          datatypes.JSON `json:"labels"`
	AugmentedLabels datatypes.JSON `json:"augmentedLabels"`
	Extra           datatypes.JSON `json:"extra"`

	Tensors []SampleTensor `json:"tensors" gorm:"foreignKey:SampleID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (*Sample) TableName() string {
	return "samples"
}

// SampleTensor stores one tensor field of a sample. Data is the row-major
// element list as little-endian float64.
type SampleTensor struct {
	ID       uint           `json:"id" gorm:"primarykey"`
	SampleID uint           `json:"sampleId" gorm:"index:idx_sample_tensor_sample_id"`
	Field    string         `json:"field" gorm:"size:127"`
	Shape    datatypes.JSON `json:"shape"`
	DType    string         `json:"dtype" gorm:"size:32"`
	Data     []byte         `json:"-"`
}

func (*SampleTensor) TableName() string {
	return "sample_tensors"
}
