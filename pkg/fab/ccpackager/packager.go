/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package ccpackager holds the archive format shared by the language
// specific chaincode packagers.
//
// A package is a gzipped tar whose entries are sorted by name and carry
// zero timestamps and a fixed mode, so packaging the same inputs twice
// yields byte-identical archives.
package ccpackager

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/errors/sdkerr"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/logging"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/pkg/errors"
)

var logger = logging.NewLogger("fabsdk/fab")

// MetaInfDir is the name of the metadata directory inside a package
const MetaInfDir = "META-INF"

const entryMode = 0100644

// CCPackage contains package type and bytes required to create CDS
type CCPackage struct {
	Type pb.ChaincodeSpec_Type
	Code []byte
}

// Descriptor maps an archive entry name to the file it is read from
type Descriptor struct {
	Name string
	Path string
}

// KeepFunc decides whether a regular file is packaged
type KeepFunc func(path string) bool

// KeepExtensions returns a KeepFunc accepting the given file extensions
func KeepExtensions(exts ...string) KeepFunc {
	return func(path string) bool {
		ext := filepath.Ext(path)
		for _, v := range exts {
			if v == ext {
				return true
			}
		}
		return false
	}
}

// KeepAll accepts every regular file
func KeepAll(string) bool {
	return true
}

// FindSource walks root and returns a descriptor for every kept regular
// file. Entry names are the slash separated path relative to root, joined
// to prefix.
func FindSource(root string, prefix string, keep KeepFunc) ([]*Descriptor, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, sdkerr.NewInvalidArgument("The chaincode source directory %s does not exist", root)
		}
		return nil, errors.Wrapf(err, "stat of %s failed", root)
	}
	if !info.IsDir() {
		return nil, sdkerr.NewInvalidArgument("The chaincode source %s is not a directory", root)
	}

	var descriptors []*Descriptor
	err = filepath.Walk(root, func(path string, fileInfo os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fileInfo.Mode().IsRegular() || !keep(path) {
			return nil
		}
		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(relPath)
		if prefix != "" {
			name = prefix + "/" + name
		}
		descriptors = append(descriptors, &Descriptor{Name: name, Path: path})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walking %s failed", root)
	}
	return descriptors, nil
}

// FindMetaInf validates the metadata location and returns the descriptors
// of every file below <location>/META-INF, named META-INF/<relative path>.
func FindMetaInf(location string) ([]*Descriptor, error) {
	info, err := os.Stat(location)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, sdkerr.NewInvalidArgument("Directory to find chaincode META-INF %s does not exist", location)
		}
		return nil, errors.Wrapf(err, "stat of %s failed", location)
	}
	if !info.IsDir() {
		return nil, sdkerr.NewInvalidArgument("Directory to find chaincode META-INF %s is not a directory", location)
	}

	metaInf := filepath.Join(location, MetaInfDir)
	info, err = os.Stat(metaInf)
	if err != nil || !info.IsDir() {
		return nil, sdkerr.NewInvalidArgument("The META-INF directory does not exist in %s", metaInf)
	}

	descriptors, err := FindSource(metaInf, MetaInfDir, KeepAll)
	if err != nil {
		return nil, err
	}
	if len(descriptors) == 0 {
		return nil, sdkerr.NewInvalidArgument("The META-INF directory %s is empty.", metaInf)
	}
	return descriptors, nil
}

// Package writes the descriptors, sorted by entry name, into a tar.gz archive
func Package(descriptors []*Descriptor) ([]byte, error) {
	sorted := make([]*Descriptor, len(descriptors))
	copy(sorted, descriptors)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Name == sorted[i].Name {
			return nil, errors.Errorf("duplicate package entry %s", sorted[i].Name)
		}
	}

	var codePackage bytes.Buffer
	gw := gzip.NewWriter(&codePackage)
	tw := tar.NewWriter(gw)
	for _, d := range sorted {
		logger.Debugf("packaging %s as %s", d.Path, d.Name)
		if err := packEntry(tw, d); err != nil {
			closeStream(tw, gw)
			return nil, errors.Wrapf(err, "packEntry failed for %s", d.Path)
		}
	}
	if err := closeStream(tw, gw); err != nil {
		return nil, errors.Wrap(err, "closeStream failed")
	}
	return codePackage.Bytes(), nil
}

// Entries lists the entry names of a package in archive order
func Entries(code []byte) ([]string, error) {
	gzr, err := gzip.NewReader(bytes.NewReader(code))
	if err != nil {
		return nil, errors.Wrap(err, "invalid gzip stream")
	}
	defer gzr.Close()

	var names []string
	tr := tar.NewReader(gzr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return names, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "invalid tar stream")
		}
		names = append(names, header.Name)
	}
}

// HasMetaInf reports whether the entry names contain metadata
func HasMetaInf(names []string) bool {
	for _, name := range names {
		if strings.HasPrefix(name, MetaInfDir+"/") {
			return true
		}
	}
	return false
}

func closeStream(tw io.Closer, gw io.Closer) error {
	if err := tw.Close(); err != nil {
		gw.Close()
		return err
	}
	return gw.Close()
}

func packEntry(tw *tar.Writer, d *Descriptor) error {
	file, err := os.Open(d.Path)
	if err != nil {
		return err
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Warnf("error file close %s", err)
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		return err
	}

	header := &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     d.Name,
		Size:     stat.Size(),
		Mode:     entryMode,
		// zero times keep the archive reproducible
		ModTime:    time.Time{},
		AccessTime: time.Time{},
		ChangeTime: time.Time{},
	}
	if err := tw.WriteHeader(header); err != nil {
		return err
	}
	_, err = io.Copy(tw, file)
	return err
}
