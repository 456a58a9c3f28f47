package route

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/Md-IrfanS/DevCamper-API/model/bootcamp"
	"github.com/Md-IrfanS/DevCamper-API/rest/data"
	"github.com/Md-IrfanS/DevCamper-API/rest/model"
	"github.com/Md-IrfanS/DevCamper-API/upload"
	"github.com/evergreen-ci/gimlet"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const uploadFormField = "file"

// multipartMemory is how much of a multipart body is held in memory before
// parts spill to temporary files.
const multipartMemory = 8 << 20

func formFiles(r *http.Request) ([]*multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, gimlet.ErrorResponse{StatusCode: http.StatusBadRequest, Message: "please upload a file"}
	}
	headers := r.MultipartForm.File[uploadFormField]
	if len(headers) == 0 {
		return nil, gimlet.ErrorResponse{StatusCode: http.StatusBadRequest, Message: "please upload a file"}
	}
	return headers, nil
}

// findOwnedBootcamp loads the bootcamp and checks that the request user may
// change it.
func findOwnedBootcamp(ctx context.Context, sc data.Connector, id string) (*bootcamp.Bootcamp, error) {
	b, err := sc.FindBootcampById(ctx, id)
	if err != nil {
		return nil, err
	}
	if err = checkOwner(MustHaveUser(ctx), b.User, "bootcamp", id); err != nil {
		return nil, err
	}
	return b, nil
}

func logOrphanedFile(err error, bootcampID, key string) {
	grip.Warning(message.WrapError(err, message.Fields{
		"message":     "could not remove stored file",
		"bootcamp_id": bootcampID,
		"key":         key,
	}))
}

///////////////////////////////////////////////////////////////////////////////
//
// PUT /bootcamps/{bootcampId}/photo

type photoUploadHandler struct {
	bootcampID string
	file       *upload.File

	sc       data.Connector
	maxBytes int64
}

func makeUploadBootcampPhoto(sc data.Connector, opts HandlerOpts) gimlet.RouteHandler {
	return &photoUploadHandler{sc: sc, maxBytes: opts.MaxUploadBytes}
}

func (h *photoUploadHandler) Factory() gimlet.RouteHandler {
	return &photoUploadHandler{sc: h.sc, maxBytes: h.maxBytes}
}

func (h *photoUploadHandler) Parse(ctx context.Context, r *http.Request) error {
	h.bootcampID = gimlet.GetVars(r)["bootcampId"]
	headers, err := formFiles(r)
	if err != nil {
		return err
	}
	h.file, err = upload.Validate(headers[0], h.maxBytes)
	if err != nil {
		return err
	}
	if h.file.Folder != upload.ImagesFolder {
		return gimlet.ErrorResponse{StatusCode: http.StatusBadRequest, Message: "please upload an image file"}
	}
	return nil
}

func (h *photoUploadHandler) Run(ctx context.Context) gimlet.Responder {
	b, err := findOwnedBootcamp(ctx, h.sc, h.bootcampID)
	if err != nil {
		return makeFailure(ctx, err)
	}

	key, err := h.sc.StoreFile(ctx, h.file, upload.FileName(h.bootcampID, h.file.Name))
	if err != nil {
		return makeFailure(ctx, errors.Wrap(err, "storing photo"))
	}
	photo := h.sc.FileURL(key)
	previous, err := h.sc.SetBootcampPhoto(ctx, b.Id, photo, key)
	if err != nil {
		logOrphanedFile(h.sc.DeleteFile(ctx, key), h.bootcampID, key)
		return makeFailure(ctx, err)
	}
	if previous != "" {
		logOrphanedFile(h.sc.DeleteFile(ctx, previous), h.bootcampID, previous)
	}

	return makeSuccess(http.StatusOK, "photo uploaded", map[string]string{"photo": photo})
}

///////////////////////////////////////////////////////////////////////////////
//
// DELETE /bootcamps/{bootcampId}/photo

type photoDeleteHandler struct {
	bootcampID string
	sc         data.Connector
}

func makeDeleteBootcampPhoto(sc data.Connector) gimlet.RouteHandler {
	return &photoDeleteHandler{sc: sc}
}

func (h *photoDeleteHandler) Factory() gimlet.RouteHandler {
	return &photoDeleteHandler{sc: h.sc}
}

func (h *photoDeleteHandler) Parse(ctx context.Context, r *http.Request) error {
	h.bootcampID = gimlet.GetVars(r)["bootcampId"]
	return nil
}

func (h *photoDeleteHandler) Run(ctx context.Context) gimlet.Responder {
	b, err := findOwnedBootcamp(ctx, h.sc, h.bootcampID)
	if err != nil {
		return makeFailure(ctx, err)
	}
	if b.PhotoKey == "" {
		return makeFailure(ctx, gimlet.ErrorResponse{StatusCode: http.StatusNotFound, Message: "bootcamp has no uploaded photo"})
	}

	previous, err := h.sc.SetBootcampPhoto(ctx, b.Id, "", "")
	if err != nil {
		return makeFailure(ctx, err)
	}
	if previous != "" {
		if err = h.sc.DeleteFile(ctx, previous); err != nil {
			return makeFailure(ctx, err)
		}
	}
	return makeSuccess(http.StatusOK, "photo deleted", nil)
}

///////////////////////////////////////////////////////////////////////////////
//
// PUT /bootcamps/{bootcampId}/uploaddoc

type docUploadHandler struct {
	bootcampID string
	files      []*upload.File

	sc       data.Connector
	maxBytes int64
}

func makeUploadBootcampDocs(sc data.Connector, opts HandlerOpts) gimlet.RouteHandler {
	return &docUploadHandler{sc: sc, maxBytes: opts.MaxUploadBytes}
}

func (h *docUploadHandler) Factory() gimlet.RouteHandler {
	return &docUploadHandler{sc: h.sc, maxBytes: h.maxBytes}
}

// Parse rejects the whole request if any one file is unacceptable, so that
// nothing is stored for a partially valid upload.
func (h *docUploadHandler) Parse(ctx context.Context, r *http.Request) error {
	h.bootcampID = gimlet.GetVars(r)["bootcampId"]
	headers, err := formFiles(r)
	if err != nil {
		return err
	}
	for _, header := range headers {
		f, err := upload.Validate(header, h.maxBytes)
		if err != nil {
			return err
		}
		h.files = append(h.files, f)
	}
	return nil
}

func (h *docUploadHandler) Run(ctx context.Context) gimlet.Responder {
	b, err := findOwnedBootcamp(ctx, h.sc, h.bootcampID)
	if err != nil {
		return makeFailure(ctx, err)
	}

	docs := make([]bootcamp.UploadDoc, 0, len(h.files))
	for _, f := range h.files {
		key, err := h.sc.StoreFile(ctx, f, upload.FileName(h.bootcampID, f.Name))
		if err != nil {
			h.discard(ctx, docs)
			return makeFailure(ctx, errors.Wrapf(err, "storing document '%s'", f.Name))
		}
		docs = append(docs, bootcamp.UploadDoc{
			Id:       primitive.NewObjectID(),
			FileName: f.Name,
			FileSize: f.Size,
			FileType: f.Type,
			URL:      h.sc.FileURL(key),
			Key:      key,
		})
	}

	if err = h.sc.AddBootcampDocs(ctx, b.Id, docs); err != nil {
		h.discard(ctx, docs)
		return makeFailure(ctx, err)
	}

	out := make([]model.APIUploadDoc, 0, len(docs))
	for _, doc := range docs {
		apiDoc := model.APIUploadDoc{}
		apiDoc.BuildFromService(doc)
		out = append(out, apiDoc)
	}
	return makeSuccess(http.StatusOK, "documents uploaded", out)
}

func (h *docUploadHandler) discard(ctx context.Context, docs []bootcamp.UploadDoc) {
	for _, doc := range docs {
		logOrphanedFile(h.sc.DeleteFile(ctx, doc.Key), h.bootcampID, doc.Key)
	}
}

///////////////////////////////////////////////////////////////////////////////
//
// DELETE /bootcamps/{bootcampId}/uploaddoc/{docId}

type docDeleteHandler struct {
	bootcampID string
	docID      string
	sc         data.Connector
}

func makeDeleteBootcampDoc(sc data.Connector) gimlet.RouteHandler {
	return &docDeleteHandler{sc: sc}
}

func (h *docDeleteHandler) Factory() gimlet.RouteHandler {
	return &docDeleteHandler{sc: h.sc}
}

func (h *docDeleteHandler) Parse(ctx context.Context, r *http.Request) error {
	vars := gimlet.GetVars(r)
	h.bootcampID = vars["bootcampId"]
	h.docID = vars["docId"]
	return nil
}

func (h *docDeleteHandler) Run(ctx context.Context) gimlet.Responder {
	b, err := findOwnedBootcamp(ctx, h.sc, h.bootcampID)
	if err != nil {
		return makeFailure(ctx, err)
	}
	notFound := gimlet.ErrorResponse{StatusCode: http.StatusNotFound, Message: "file not found"}
	docID, err := primitive.ObjectIDFromHex(h.docID)
	if err != nil {
		return makeFailure(ctx, notFound)
	}
	doc, ok := b.FindUploadDoc(docID)
	if !ok {
		return makeFailure(ctx, notFound)
	}
	if err = h.sc.RemoveBootcampDoc(ctx, b.Id, docID); err != nil {
		return makeFailure(ctx, err)
	}
	if err = h.sc.DeleteFile(ctx, doc.Key); err != nil {
		return makeFailure(ctx, err)
	}
	return makeSuccess(http.StatusOK, "file deleted", nil)
}
