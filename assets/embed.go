package assets

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	_ "image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

// SampleRate is the rate every track is resampled to.
const SampleRate = 44100

// bytesPerSecond of the decoded 16-bit stereo stream.
const bytesPerSecond = SampleRate * 4

//go:embed stickers/*.png
var stickersFS embed.FS

var (
	audioOnce    sync.Once
	audioContext *audio.Context

	stickerMu    sync.Mutex
	stickerCache = map[string]*ebiten.Image{}
)

// AudioContext returns the process-wide audio context, creating it on first use.
func AudioContext() *audio.Context {
	audioOnce.Do(func() {
		if ctx := audio.CurrentContext(); ctx != nil {
			audioContext = ctx
			return
		}
		audioContext = audio.NewContext(SampleRate)
	})
	return audioContext
}

func decodeSticker(id string) (*ebiten.Image, error) {
	b, err := stickersFS.ReadFile(path.Join("stickers", id+".png"))
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	return ebiten.NewImageFromImage(img), nil
}

// Sticker returns the image for a sticker id such as "star". Images are
// decoded once and shared.
func Sticker(id string) (*ebiten.Image, error) {
	stickerMu.Lock()
	defer stickerMu.Unlock()
	if img, ok := stickerCache[id]; ok {
		return img, nil
	}
	img, err := decodeSticker(id)
	if err != nil {
		return nil, fmt.Errorf("assets: sticker %q: %w", id, err)
	}
	stickerCache[id] = img
	return img, nil
}

// StickerIDs lists the embedded sticker ids in name order.
func StickerIDs() []string {
	entries, err := stickersFS.ReadDir("stickers")
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".png"); ok {
			ids = append(ids, name)
		}
	}
	sort.Strings(ids)
	return ids
}

// Track is a decoded audio stream ready for a player.
type Track struct {
	Stream   io.ReadSeeker
	Duration float64
}

// LoadTrack reads an audio file from disk and decodes it by extension.
// Supported: .wav, .mp3, .ogg.
func LoadTrack(path string) (*Track, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeTrack(path, b)
}

// DecodeTrack decodes b using the extension of name to pick the codec.
func DecodeTrack(name string, b []byte) (*Track, error) {
	reader := bytes.NewReader(b)
	sr := AudioContext().SampleRate()

	switch strings.ToLower(filepath.Ext(name)) {
	case ".wav":
		stream, err := wav.DecodeWithSampleRate(sr, reader)
		if err != nil {
			return nil, fmt.Errorf("decode wav %q: %w", name, err)
		}
		return &Track{Stream: stream, Duration: seconds(stream.Length())}, nil
	case ".mp3":
		stream, err := mp3.DecodeWithSampleRate(sr, reader)
		if err != nil {
			return nil, fmt.Errorf("decode mp3 %q: %w", name, err)
		}
		return &Track{Stream: stream, Duration: seconds(stream.Length())}, nil
	case ".ogg":
		stream, err := vorbis.DecodeWithSampleRate(sr, reader)
		if err != nil {
			return nil, fmt.Errorf("decode ogg %q: %w", name, err)
		}
		return &Track{Stream: stream, Duration: seconds(stream.Length())}, nil
	}

	// Fallback for already-decoded PCM in Ebiten's native format.
	return &Track{Stream: reader, Duration: seconds(int64(len(b)))}, nil
}

func seconds(length int64) float64 {
	return float64(length) / bytesPerSecond
}
