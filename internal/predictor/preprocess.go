package predictor

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"

	"github.com/vagangabrain/Happy-Meowth/pkg/httpclient"
)

const (
	inputWidth    = 224
	inputHeight   = 224
	inputChannels = 3
)

// ImageNet normalization constants, matching how the model was trained.
var (
	channelMean = [inputChannels]float32{0.485, 0.456, 0.406}
	channelStd  = [inputChannels]float32{0.229, 0.224, 0.225}
)

func fetchImage(ctx context.Context, client *httpclient.Client, url string) ([]byte, error) {
	if client == nil {
		return nil, &FetchError{URL: url, Err: errHTTPClientUnavailable}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	return data, nil
}

func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

// preprocess converts a decoded image into the flat tensor the model
// consumes: Lanczos resize to 224x224, scale to [0,1], ImageNet mean/std
// normalization per channel, CHW layout with a leading batch dimension.
// Every entry point funnels identical bytes through this one function.
func preprocess(img image.Image) []float32 {
	resized := resize.Resize(inputWidth, inputHeight, img, resize.Lanczos3)

	bounds := resized.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	plane := width * height
	inputData := make([]float32, inputChannels*plane)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()

			// RGBA yields 16-bit values; dividing by 65535 lands on the
			// same [0,1] scale as 8-bit values divided by 255.
			rNorm := float32(r) / 65535.0
			gNorm := float32(g) / 65535.0
			bNorm := float32(b) / 65535.0

			pixelIndex := y*width + x
			inputData[pixelIndex] = (rNorm - channelMean[0]) / channelStd[0]
			inputData[plane+pixelIndex] = (gNorm - channelMean[1]) / channelStd[1]
			inputData[2*plane+pixelIndex] = (bNorm - channelMean[2]) / channelStd[2]
		}
	}

	return inputData
}
