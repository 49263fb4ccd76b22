package model

// Source is a configured video-content provider.
type Source struct {
	Key    string `json:"key" yaml:"key"`
	Name   string `json:"name" yaml:"name"`
	Detail string `json:"detail,omitempty" yaml:"detail"`
	API    string `json:"-" yaml:"api"`
}
