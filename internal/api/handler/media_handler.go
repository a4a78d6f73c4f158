package handler

import (
	"Glimpse/internal/pkg/consts"
	"Glimpse/internal/pkg/minio"
	"Glimpse/internal/pkg/response"
	"Glimpse/internal/pkg/util"
	"Glimpse/internal/service"
	"bytes"
	"io"
	log "log/slog"
	"path"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const thumbMaxEdge = 480

type MediaHandler struct{}

func NewMediaHandler() *MediaHandler {
	return &MediaHandler{}
}

func (s *MediaHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	reader, err := file.Open()
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	defer func() { _ = reader.Close() }()

	contentType, err := util.GetSafeContentType(reader)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	isImage := strings.HasPrefix(contentType, consts.MimePrefixImage)
	isVideo := strings.HasPrefix(contentType, consts.MimePrefixVideo)
	if !isImage && !isVideo {
		response.Error(c, service.ErrFileNotSupported)
		return
	}

	ext := path.Ext(file.Filename)
	objectName := time.Now().Format("2006/01/02/") + uuid.NewString() + ext

	fileKey, err := minio.UploadFile(c.Request.Context(), objectName, reader, file.Size, contentType)
	if err != nil {
		log.ErrorContext(c.Request.Context(), "MEDIA_UPLOAD_FAILED", "err", err)
		response.Error(c, service.UnExpectedError)
		return
	}

	mediaType := consts.MediaTypeVideo
	var width, height int
	thumbKey := ""
	if isImage {
		mediaType = consts.MediaTypeImage
		if _, err = reader.Seek(0, io.SeekStart); err == nil {
			thumbKey, width, height = s.makeThumbnail(c, reader, objectName)
		}
	}

	res := map[string]interface{}{
		"type":      mediaType,
		"url":       fileKey,
		"thumb_url": thumbKey,
		"mime":      contentType,
		"width":     width,
		"height":    height,
		"size":      file.Size,
		"original":  file.Filename,
	}

	log.InfoContext(c.Request.Context(), "MEDIA_UPLOAD_SUCCESS", "fileKey", fileKey, "type", contentType)
	response.Success(c, res)
}

// makeThumbnail 生成等比缩略图并上传，失败不影响原图
func (s *MediaHandler) makeThumbnail(c *gin.Context, reader io.Reader, objectName string) (string, int, int) {
	img, err := imaging.Decode(reader, imaging.AutoOrientation(true))
	if err != nil {
		log.WarnContext(c.Request.Context(), "MEDIA_THUMB_DECODE_FAILED", "object", objectName, "err", err)
		return "", 0, 0
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	thumb := imaging.Fit(img, thumbMaxEdge, thumbMaxEdge, imaging.Lanczos)
	var buf bytes.Buffer
	if err = imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		log.WarnContext(c.Request.Context(), "MEDIA_THUMB_ENCODE_FAILED", "object", objectName, "err", err)
		return "", width, height
	}

	thumbName := "thumbs/" + strings.TrimSuffix(path.Base(objectName), path.Ext(objectName)) + ".jpg"
	thumbKey, err := minio.UploadFile(c.Request.Context(), thumbName, &buf, int64(buf.Len()), "image/jpeg")
	if err != nil {
		log.WarnContext(c.Request.Context(), "MEDIA_THUMB_UPLOAD_FAILED", "object", objectName, "err", err)
		return "", width, height
	}
	return thumbKey, width, height
}
