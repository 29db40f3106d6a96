package dto

import "time"

type PalletRequest struct {
	SerialNumber string `json:"serial_number"`
	Capacity     int    `json:"capacity"`
}

type AddPackageRequest struct {
	SerialNumber string         `json:"serial_number"`
	QualityMark  string         `json:"quality_mark"`
	Mass         *float64       `json:"mass"`
	PackageType  string         `json:"package_type"`
	Warehouse    string         `json:"warehouse"`
	RackSerial   string         `json:"rack_serial"`
	LineNumber   int            `json:"line_number"`
	Pallet       *PalletRequest `json:"pallet"`
}

type PackageResponse struct {
	SerialNumber string    `json:"serial_number"`
	QualityMark  string    `json:"quality_mark"`
	Mass         float64   `json:"mass"`
	PackageType  string    `json:"package_type"`
	DateAdded    time.Time `json:"date_added"`
}

type AddPackageResponse struct {
	Package  PackageResponse `json:"package"`
	Messages []string        `json:"messages"`
}

type ListPackagesResponse struct {
	Packages []PackageResponse `json:"packages"`
}
