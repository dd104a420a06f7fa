package http

import (
	"github.com/gin-gonic/gin"

	"github.com/yahayabawa/maktaba/internal/apperror"
	"github.com/yahayabawa/maktaba/internal/uploads"
)

type UploadsController struct {
	store   *uploads.Store
	cleaner *uploads.Cleaner
}

func NewUploadsController(store *uploads.Store, cleaner *uploads.Cleaner) *UploadsController {
	return &UploadsController{
		store:   store,
		cleaner: cleaner,
	}
}

// UploadBook stores a standalone book file and returns its public path.
func (controller *UploadsController) UploadBook(c *gin.Context) {
	controller.upload(c, uploads.KindBook, "bookFile")
}

// UploadImage stores a standalone image and returns its public path.
func (controller *UploadsController) UploadImage(c *gin.Context) {
	controller.upload(c, uploads.KindImage, "image")
}

func (controller *UploadsController) upload(c *gin.Context, kind uploads.Kind, field string) {
	header, err := c.FormFile(field)
	if err != nil {
		respondError(c, apperror.New(apperror.KindValidation, "please attach a file under the '"+field+"' field"), "upload")
		return
	}
	path, err := controller.store.SaveMultipart(kind, header)
	if err != nil {
		respondError(c, err, "upload")
		return
	}
	respondCreated(c, "file uploaded successfully", gin.H{
		"url":      path,
		"filename": header.Filename,
		"size":     header.Size,
	})
}

// Delete removes an uploaded artifact by kind and filename.
func (controller *UploadsController) Delete(c *gin.Context) {
	kind, err := uploads.KindFromString(c.Param("type"))
	if err != nil {
		respondError(c, apperror.NewBadID("type"), "delete upload")
		return
	}
	filename := c.Param("filename")
	publicPath := uploads.URLPrefix + "/" + string(kind) + "/" + filename

	if !controller.store.Exists(publicPath) {
		respondError(c, apperror.NewNotFound("file"), "delete upload")
		return
	}
	if err := controller.store.Delete(publicPath); err != nil {
		respondError(c, err, "delete upload")
		return
	}
	respondMessage(c, "file deleted successfully", nil)
}

// Config reports the accepted extensions and size limits per artifact
// kind, for upload forms.
func (controller *UploadsController) Config(c *gin.Context) {
	respondData(c, gin.H{
		"books": gin.H{
			"extensions": uploads.AllowedExtensions(uploads.KindBook),
			"maxSize":    controller.store.MaxSize(uploads.KindBook),
		},
		"images": gin.H{
			"extensions": uploads.AllowedExtensions(uploads.KindImage),
			"maxSize":    controller.store.MaxSize(uploads.KindImage),
		},
	})
}
