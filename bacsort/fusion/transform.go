// Copyright © 2023-2024 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package fusion

import (
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// TransformInfo is saved to a TOML file, so a fitted transform
// can be reused to fuse other matrices of the same two metrics.
type TransformInfo struct {
	Primary   string `toml:"primary" comment:"matrix trusted at short distances"`
	Secondary string `toml:"secondary" comment:"matrix trusted at long distances"`

	RegressionMin float64 `toml:"regression-min"`
	RegressionMax float64 `toml:"regression-max"`
	ThroughOrigin bool    `toml:"through-origin"`
	Points        int     `toml:"points" comment:"number of genome pairs in the regression window"`
	RSquared      float64 `toml:"r-squared"`

	Transform Transform `toml:"transform"`
}

// WriteTransform writes transform information to a TOML file.
func WriteTransform(file string, info *TransformInfo) error {
	data, err := toml.Marshal(info)
	if err != nil {
		return errors.Wrap(err, "failed to marshal transform")
	}
	if err = os.WriteFile(file, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write transform file: %s", file)
	}
	return nil
}

// ReadTransform reads transform information from a TOML file.
func ReadTransform(file string) (*TransformInfo, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read transform file: %s", file)
	}

	info := &TransformInfo{}
	if err = toml.Unmarshal(data, info); err != nil {
		return nil, errors.Wrapf(err, "failed to parse transform file: %s", file)
	}
	if info.Transform.Slope == 0 && info.Transform.Intercept == 0 {
		return nil, errors.Errorf("no transform found in file: %s", file)
	}
	return info, nil
}
