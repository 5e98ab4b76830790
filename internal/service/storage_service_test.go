package service

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pianoscribe/api/internal/model"
)

func TestAudioFormatFor(t *testing.T) {
	f, err := AudioFormatFor("recital.WAV")
	assert.NoError(t, err)
	assert.Equal(t, model.AudioFormatWAV, f)

	f, err = AudioFormatFor("take.flac")
	assert.NoError(t, err)
	assert.Equal(t, model.AudioFormatFLAC, f)

	_, err = AudioFormatFor("notes.txt")
	assert.Error(t, err)

	_, err = AudioFormatFor("noextension")
	assert.Error(t, err)
}

func TestInMemoryUploadRoundtrip(t *testing.T) {
	svc := NewStorageService(nil)
	ctx := context.Background()

	key, err := svc.UploadAudio(ctx, "take1.wav", strings.NewReader("fake audio"))
	assert.NoError(t, err)
	assert.Contains(t, key, "uploads/")
	assert.True(t, strings.HasSuffix(key, ".wav"))

	rc, err := svc.FetchAudio(ctx, key)
	assert.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	assert.NoError(t, err)
	assert.Equal(t, "fake audio", string(data))

	assert.NoError(t, svc.DeleteUpload(ctx, key))
	_, err = svc.FetchAudio(ctx, key)
	assert.Error(t, err)
}

func TestInMemoryStoreOutput(t *testing.T) {
	svc := NewStorageService(nil)

	url, err := svc.StoreOutput(context.Background(), "job-1", "transcription.mid", []byte{0x4d}, "audio/midi")
	assert.NoError(t, err)
	assert.Contains(t, url, "outputs/job-1/transcription.mid")
}
