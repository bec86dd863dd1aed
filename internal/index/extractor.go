package index

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

// TesseractExtractor runs the tesseract CLI on a still.
type TesseractExtractor struct {
	Binary    string
	Languages string
}

func (e *TesseractExtractor) Extract(ctx context.Context, framePath string) (string, error) {
	bin := e.Binary
	if bin == "" {
		bin = "tesseract"
	}
	args := []string{framePath, "stdout"}
	if e.Languages != "" {
		args = append(args, "-l", e.Languages)
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("tesseract error: %w, output: %s", err, stderr.String())
	}
	return collapseWhitespace(string(out)), nil
}

// VisionExtractor sends stills to Google Cloud Vision text detection.
type VisionExtractor struct {
	client *vision.ImageAnnotatorClient
}

// NewVisionExtractor uses credentialsFile when set, otherwise application default credentials.
func NewVisionExtractor(ctx context.Context, credentialsFile string) (*VisionExtractor, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return &VisionExtractor{client: client}, nil
}

func (e *VisionExtractor) Extract(ctx context.Context, framePath string) (string, error) {
	img, err := os.ReadFile(framePath)
	if err != nil {
		return "", err
	}

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image: &visionpb.Image{Content: img},
			Features: []*visionpb.Feature{
				{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
			},
		}},
	}
	resp, err := e.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return "", fmt.Errorf("vision BatchAnnotateImages: %w", err)
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return "", nil
	}

	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return "", fmt.Errorf("vision annotate error: %s", r0.Error.Message)
	}
	if r0.FullTextAnnotation == nil {
		return "", nil
	}
	return collapseWhitespace(r0.FullTextAnnotation.Text), nil
}

func (e *VisionExtractor) Close() error {
	return e.client.Close()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
