// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/halfspace/localstore"
	"cogentcore.org/halfspace/state"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
)

// newStoreCmd returns the store command. Without a configured
// StoreDir, documents are kept in the user config directory.
// A leading ~ in StoreDir is expanded.
func newStoreCmd(o *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage documents in the local store",
	}
	with := func(f func(cmd *cobra.Command, s localstore.Store, args []string) error) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg := *o.settings
			dir, err := homedir.Expand(cfg.StoreDir)
			if err != nil {
				return err
			}
			cfg.StoreDir = dir
			if cfg.StoreDir == "" {
				dir, err := os.UserConfigDir()
				if err != nil {
					return err
				}
				cfg.StoreDir = filepath.Join(dir, "halfspace")
			}
			s, err := localstore.Open(&cfg)
			if err != nil {
				return err
			}
			defer func() { errors.Log(s.Close()) }()
			return f(cmd, s, args)
		}
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "ls",
			Short: "List stored documents",
			Args:  cobra.NoArgs,
			RunE:  with(StoreList),
		},
		&cobra.Command{
			Use:   "cat name",
			Short: "Print a stored document",
			Args:  cobra.ExactArgs(1),
			RunE:  with(StoreCat),
		},
		&cobra.Command{
			Use:   "put file [name]",
			Short: "Store a document file, checking that it can be read",
			Args:  cobra.RangeArgs(1, 2),
			RunE:  with(StorePut),
		},
		&cobra.Command{
			Use:   "rm name",
			Short: "Delete a stored document",
			Args:  cobra.ExactArgs(1),
			RunE:  with(StoreRemove),
		},
	)
	return cmd
}

// storeName adds the document extension to name if it is missing.
func storeName(name string) string {
	if !strings.HasSuffix(name, localstore.Extension) {
		name += localstore.Extension
	}
	return name
}

// StoreList prints the names of the stored documents.
func StoreList(cmd *cobra.Command, s localstore.Store, args []string) error {
	names, err := s.List()
	if err != nil {
		return err
	}
	for _, n := range names {
		fmt.Fprintln(cmd.OutOrStdout(), n)
	}
	return nil
}

// StoreCat prints a stored document.
func StoreCat(cmd *cobra.Command, s localstore.Store, args []string) error {
	b, err := s.Read(storeName(args[0]))
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	_, err = cmd.OutOrStdout().Write(b)
	return err
}

// StorePut stores a document file under its base name or the
// given name. Documents of older versions are stored migrated.
func StorePut(cmd *cobra.Command, s localstore.Store, args []string) error {
	d, err := state.Open(args[0])
	if err != nil {
		return err
	}
	name := filepath.Base(args[0])
	if len(args) > 1 {
		name = args[1]
	}
	name = storeName(name)
	if err := localstore.ValidName(name); err != nil {
		return err
	}
	if err := s.Write(name, d.Bytes()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "stored %s\n", name)
	return nil
}

// StoreRemove deletes a stored document.
func StoreRemove(cmd *cobra.Command, s localstore.Store, args []string) error {
	name := storeName(args[0])
	if err := s.Delete(name); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", name)
	return nil
}
