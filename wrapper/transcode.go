package wrapper

import (
	"github.com/7blacky7/imagewrapper/codec"
	"github.com/7blacky7/imagewrapper/format"
	"github.com/7blacky7/imagewrapper/pixel"
)

// TranscodeRequest describes a conversion from one compressed format to
// another.
type TranscodeRequest struct {
	Target  format.Format // output format
	Encode  codec.Options // encoder settings for Target
	Raw     []RawOption   // pixel format to pass through, if any
	Session []Option      // options for both sessions
}

// TranscodeResult is the output of Transcode.
type TranscodeResult struct {
	Data   []byte        // encoded as the request's Target
	Source format.Format // sniffed input format
	Pixels *pixel.Buffer // intermediate buffer handed to the encoder
}

// Transcode sniffs data, decodes it and encodes the pixels as req.Target.
func (r *Registry) Transcode(data []byte, req TranscodeRequest) (*TranscodeResult, error) {
	src, err := r.NewFromBytes(data, req.Session...)
	if err != nil {
		return nil, err
	}
	buf, err := src.Raw(req.Raw...)
	if err != nil {
		return nil, err
	}

	dst, err := r.New(req.Target, req.Session...)
	if err != nil {
		return nil, err
	}
	if err := dst.SetRaw(buf); err != nil {
		return nil, err
	}
	out, err := dst.Compressed(req.Encode)
	if err != nil {
		return nil, err
	}
	return &TranscodeResult{Data: out, Source: src.Format(), Pixels: buf}, nil
}
