package store

import (
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Blob is a stored binary file opened for reading. It is seekable so it can
// back range requests.
type Blob struct {
	io.ReadSeekCloser
	Name        string
	ContentType string
	Size        int64
	ModTime     time.Time
}

// VideoBucket stores uploaded videos as GridFS files.
type VideoBucket struct {
	bucket *gridfs.Bucket
}

func NewVideoBucket(db *mongo.Database, name string) (*VideoBucket, error) {
	b, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(name))
	if err != nil {
		return nil, fmt.Errorf("gridfs bucket %s: %w", name, err)
	}
	return &VideoBucket{bucket: b}, nil
}

// Upload streams r into a new GridFS file and returns its id as hex.
func (v *VideoBucket) Upload(filename, contentType string, r io.Reader) (string, error) {
	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "contentType", Value: contentType}})
	oid, err := v.bucket.UploadFromStream(filename, r, opts)
	if err != nil {
		return "", fmt.Errorf("gridfs upload %s: %w", filename, err)
	}
	return oid.Hex(), nil
}

// Open returns the newest revision of filename.
func (v *VideoBucket) Open(filename string) (*Blob, error) {
	stream, err := v.bucket.OpenDownloadStreamByName(filename)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("gridfs open %s: %w", filename, err)
	}

	file := stream.GetFile()
	contentType := "application/octet-stream"
	if file.Metadata != nil {
		if ct, ok := file.Metadata.Lookup("contentType").StringValueOK(); ok && ct != "" {
			contentType = ct
		}
	}

	id, _ := file.ID.(primitive.ObjectID)
	reopen := func() (downloadStream, error) {
		return v.bucket.OpenDownloadStream(id)
	}
	return &Blob{
		ReadSeekCloser: &gridfsReader{reopen: reopen, stream: stream, size: file.Length},
		Name:           file.Name,
		ContentType:    contentType,
		Size:           file.Length,
		ModTime:        file.UploadDate,
	}, nil
}

// downloadStream is the part of *gridfs.DownloadStream the reader uses.
type downloadStream interface {
	io.ReadCloser
	Skip(n int64) (int64, error)
}

// gridfsReader adds Seek on top of a download stream. Forward seeks skip
// chunks, backward seeks reopen the stream.
type gridfsReader struct {
	reopen    func() (downloadStream, error)
	stream    downloadStream
	size      int64
	pos       int64
	streamPos int64
}

func (g *gridfsReader) Read(p []byte) (int, error) {
	if g.pos >= g.size {
		return 0, io.EOF
	}
	if g.pos != g.streamPos {
		if err := g.reposition(); err != nil {
			return 0, err
		}
	}
	n, err := g.stream.Read(p)
	g.pos += int64(n)
	g.streamPos += int64(n)
	return n, err
}

func (g *gridfsReader) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = g.pos + offset
	case io.SeekEnd:
		abs = g.size + offset
	default:
		return 0, errors.New("gridfs seek: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("gridfs seek: negative position")
	}
	g.pos = abs
	return abs, nil
}

func (g *gridfsReader) reposition() error {
	if g.pos < g.streamPos {
		g.stream.Close()
		stream, err := g.reopen()
		if err != nil {
			return fmt.Errorf("gridfs reopen: %w", err)
		}
		g.stream = stream
		g.streamPos = 0
	}
	skipped, err := g.stream.Skip(g.pos - g.streamPos)
	g.streamPos += skipped
	if err != nil {
		return fmt.Errorf("gridfs skip: %w", err)
	}
	return nil
}

func (g *gridfsReader) Close() error {
	return g.stream.Close()
}
