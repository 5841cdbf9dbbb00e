/*
Copyright © 2025 Jayson Grace <jayson.e.grace@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

package ami

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// Image is the part of an AMI the pipelines care about.
type Image struct {
	ID           string
	Name         string
	State        string
	CreationDate string
}

func fromEC2(img ec2types.Image) Image {
	return Image{
		ID:           aws.ToString(img.ImageId),
		Name:         aws.ToString(img.Name),
		State:        string(img.State),
		CreationDate: aws.ToString(img.CreationDate),
	}
}

// Resolver looks up AMIs.
type Resolver struct {
	client EC2API
}

// NewResolver creates a Resolver on client.
func NewResolver(client EC2API) *Resolver {
	return &Resolver{client: client}
}

// Verify checks that the image id exists and is available.
func (r *Resolver) Verify(ctx context.Context, id string) (*Image, error) {
	if id == "" {
		return nil, &CheckError{Message: "no base image given", Remediation: "Set base_ami_id in the variable files."}
	}

	out, err := r.client.DescribeImages(ctx, &ec2.DescribeImagesInput{ImageIds: []string{id}})
	if err != nil {
		return nil, wrapWithRemediation(err, fmt.Sprintf("describe image %s", id))
	}
	if len(out.Images) == 0 {
		return nil, &CheckError{
			Message:     fmt.Sprintf("image %s not found", id),
			Remediation: "AMI IDs are region-specific. Check base_ami_id against ec2_region.",
		}
	}

	img := fromEC2(out.Images[0])
	if img.State != string(ec2types.ImageStateAvailable) {
		return &img, &CheckError{
			Message:     fmt.Sprintf("image %s is %s", id, img.State),
			Remediation: "Wait for the image to become available or pick another base_ami_id.",
		}
	}
	return &img, nil
}

// Latest returns the newest available image whose name matches the
// nameFilter wildcard, owned by one of owners (any owner when empty).
func (r *Resolver) Latest(ctx context.Context, nameFilter string, owners []string) (*Image, error) {
	in := &ec2.DescribeImagesInput{
		Owners: owners,
		Filters: []ec2types.Filter{
			{Name: aws.String("name"), Values: []string{nameFilter}},
			{Name: aws.String("state"), Values: []string{string(ec2types.ImageStateAvailable)}},
		},
	}
	out, err := r.client.DescribeImages(ctx, in)
	if err != nil {
		return nil, wrapWithRemediation(err, fmt.Sprintf("describe images %q", nameFilter))
	}
	if len(out.Images) == 0 {
		return nil, &CheckError{
			Message:     fmt.Sprintf("no available image matches %q", nameFilter),
			Remediation: "Check the name filter and the owners, or set base_ami_id explicitly.",
		}
	}

	images := make([]Image, 0, len(out.Images))
	for _, img := range out.Images {
		images = append(images, fromEC2(img))
	}
	// CreationDate is RFC 3339 so strings sort chronologically.
	sort.Slice(images, func(i, j int) bool {
		if images[i].CreationDate != images[j].CreationDate {
			return images[i].CreationDate > images[j].CreationDate
		}
		return images[i].ID < images[j].ID
	})
	return &images[0], nil
}
