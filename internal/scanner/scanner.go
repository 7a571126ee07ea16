// Package scanner walks a directory tree, classifies every entry and builds the FileNode tree.
package scanner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/fln/internal/ignore"
	"github.com/temirov/fln/internal/types"
	"github.com/temirov/fln/internal/utils"
)

const (
	minimumConcurrency        = 8
	maximumConcurrency        = 64
	concurrencyPerCPU         = 4
	generatedSniffLength      = 100
	initialEstimateHeadroom   = 50
	minimumInitialEstimate    = 100
	hiddenEntryPrefix         = "."
	accessFailureMessage      = "failed to access entry"
	readFailureMessage        = "failed to read file"
	symlinkCycleMessage       = "symlink cycle detected"
	rootRealPathFailedMessage = "failed to resolve root real path"
)

// ErrEmptyRoot reports that the scan produced no usable root directory.
var ErrEmptyRoot = errors.New("Root directory is empty or all files were excluded.")

// Options configures a scan.
type Options struct {
	ProjectName          string
	RootDirectory        string
	ExcludePatterns      []string
	IncludePatterns      []string
	ExcludedPaths        []string
	IncludeHidden        bool
	UseGitignore         bool
	FollowSymlinks       bool
	MaximumFileSizeBytes int64
	Progress             types.ProgressFunc
	Logger               *zap.Logger
}

type scanState struct {
	options          Options
	logger           *zap.Logger
	ignoreMatcher    *ignore.Matcher
	includeMatcher   *ignore.Matcher
	excludedPaths    map[string]struct{}
	visitedPaths     *pathSet
	concurrencyLimit int

	statsMutex     sync.Mutex
	stats          types.ScanStats
	processedItems int
	totalEstimate  int
}

// Scan walks options.RootDirectory and returns the classified tree with its statistics.
// Per-entry failures are counted and logged; only an empty or fully excluded root fails the scan.
func Scan(ctx context.Context, options Options) (types.ScanResult, error) {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	state := &scanState{
		options: options,
		logger:  logger,
		ignoreMatcher: ignore.NewMatcher(ignore.Options{
			RootDirectory:   options.RootDirectory,
			ExcludePatterns: options.ExcludePatterns,
			UseGitignore:    options.UseGitignore,
			Logger:          logger,
		}),
		includeMatcher:   ignore.NewIncludeMatcher(options.IncludePatterns, logger),
		excludedPaths:    make(map[string]struct{}, len(options.ExcludedPaths)),
		visitedPaths:     newPathSet(),
		concurrencyLimit: ConcurrencyLimit(runtime.NumCPU()),
	}
	for _, excludedPath := range options.ExcludedPaths {
		state.excludedPaths[utils.ToSlashPath(excludedPath)] = struct{}{}
	}

	if options.FollowSymlinks {
		rootRealPath, resolveError := filepath.EvalSymlinks(options.RootDirectory)
		if resolveError != nil {
			logger.Debug(rootRealPathFailedMessage, zap.Error(resolveError))
		} else {
			state.visitedPaths.Add(rootRealPath)
		}
	}

	rootNode := state.scanEntry(ctx, options.RootDirectory, "", nil)
	if contextError := ctx.Err(); contextError != nil {
		return types.ScanResult{}, contextError
	}
	if !rootNode.IsDirectory() || len(rootNode.Children) == 0 {
		return types.ScanResult{}, ErrEmptyRoot
	}

	return types.ScanResult{
		ProjectName: options.ProjectName,
		Root:        rootNode,
		Stats:       state.snapshotStats(),
	}, nil
}

// ConcurrencyLimit returns the per-directory worker count for the given CPU count.
func ConcurrencyLimit(cpuCount int) int {
	return max(minimumConcurrency, min(maximumConcurrency, cpuCount*concurrencyPerCPU))
}

func (state *scanState) scanEntry(ctx context.Context, fullPath string, relativePath string, directoryEntry fs.DirEntry) *types.FileNode {
	name := filepath.Base(fullPath)
	if directoryEntry != nil {
		name = directoryEntry.Name()
	}

	isRoot := relativePath == ""
	if !isRoot {
		if _, excluded := state.excludedPaths[relativePath]; excluded {
			return nil
		}
		isDirectoryEntry := directoryEntry != nil && directoryEntry.IsDir()
		explicitlyIncluded := state.includeMatcher.Matches(relativePath, isDirectoryEntry)
		if !explicitlyIncluded && state.ignoreMatcher.Matches(relativePath, isDirectoryEntry) {
			return nil
		}
		if !state.options.IncludeHidden && strings.HasPrefix(name, hiddenEntryPrefix) && name != hiddenEntryPrefix {
			return nil
		}
		return state.classifyEntry(ctx, fullPath, relativePath, name, directoryEntry, explicitlyIncluded)
	}
	return state.classifyEntry(ctx, fullPath, relativePath, name, directoryEntry, false)
}

func (state *scanState) classifyEntry(ctx context.Context, fullPath string, relativePath string, name string, directoryEntry fs.DirEntry, explicitlyIncluded bool) *types.FileNode {
	entryInfo, infoError := lstatEntry(fullPath, directoryEntry)
	if infoError != nil {
		state.recordAccessError(relativePath, infoError)
		return nil
	}

	symlinkTarget := ""
	if entryInfo.Mode()&fs.ModeSymlink != 0 {
		target, readlinkError := os.Readlink(fullPath)
		if readlinkError != nil {
			state.recordAccessError(relativePath, readlinkError)
			return nil
		}
		symlinkTarget = target
		if !state.options.FollowSymlinks {
			return &types.FileNode{Name: name, Path: relativePath, Type: types.NodeTypeSymlink, Target: symlinkTarget}
		}

		resolvedPath, resolveError := filepath.EvalSymlinks(fullPath)
		if resolveError != nil {
			state.recordAccessError(relativePath, resolveError)
			return nil
		}
		if !state.visitedPaths.Add(resolvedPath) {
			state.updateStats(func(stats *types.ScanStats) { stats.Skipped++ })
			state.logger.Debug(symlinkCycleMessage, zap.String("path", relativePath), zap.String("target", symlinkTarget))
			return &types.FileNode{
				Name:       name,
				Path:       relativePath,
				Type:       types.NodeTypeSymlink,
				Target:     symlinkTarget,
				SkipReason: types.SkipReasonSymlinkCycle,
			}
		}

		targetInfo, statError := os.Stat(fullPath)
		if statError != nil {
			state.recordAccessError(relativePath, statError)
			return nil
		}
		entryInfo = targetInfo
	}

	switch {
	case entryInfo.IsDir():
		directoryNode, directoryError := state.buildDirectoryNode(ctx, fullPath, relativePath, name, symlinkTarget)
		if directoryError != nil {
			state.recordAccessError(relativePath, directoryError)
			return nil
		}
		return directoryNode
	case entryInfo.Mode().IsRegular():
		return state.buildFileNode(fullPath, relativePath, name, entryInfo.Size(), symlinkTarget, explicitlyIncluded)
	default:
		return nil
	}
}

func lstatEntry(fullPath string, directoryEntry fs.DirEntry) (fs.FileInfo, error) {
	if directoryEntry != nil {
		return directoryEntry.Info()
	}
	return os.Lstat(fullPath)
}

func (state *scanState) buildDirectoryNode(ctx context.Context, fullPath string, relativePath string, name string, symlinkTarget string) (*types.FileNode, error) {
	state.updateStats(func(stats *types.ScanStats) { stats.Directories++ })
	if loadError := state.ignoreMatcher.AddPatternsForDirectory(fullPath); loadError != nil {
		return nil, loadError
	}
	if contextError := ctx.Err(); contextError != nil {
		return nil, contextError
	}

	directoryEntries, readDirectoryError := os.ReadDir(fullPath)
	if readDirectoryError != nil {
		return nil, readDirectoryError
	}
	state.extendEstimate(len(directoryEntries))

	children := state.scanChildren(ctx, fullPath, relativePath, directoryEntries)
	sortNodes(children)
	return &types.FileNode{
		Name:     name,
		Path:     relativePath,
		Type:     types.NodeTypeDirectory,
		Children: children,
		Target:   symlinkTarget,
	}, nil
}

// scanChildren classifies directory entries with a fixed pool of workers pulling from a shared index.
// Results keep their entry index so completion order never leaks into the tree.
func (state *scanState) scanChildren(ctx context.Context, directoryPath string, relativePath string, directoryEntries []fs.DirEntry) []*types.FileNode {
	if len(directoryEntries) == 0 {
		return nil
	}
	results := make([]*types.FileNode, len(directoryEntries))
	workerCount := min(state.concurrencyLimit, len(directoryEntries))

	var nextIndex atomic.Int64
	var group errgroup.Group
	for range workerCount {
		group.Go(func() error {
			for {
				entryIndex := int(nextIndex.Add(1) - 1)
				if entryIndex >= len(directoryEntries) {
					return nil
				}
				directoryEntry := directoryEntries[entryIndex]
				childPath := filepath.Join(directoryPath, directoryEntry.Name())
				results[entryIndex] = state.scanEntry(ctx, childPath, joinRelativePath(relativePath, directoryEntry.Name()), directoryEntry)
			}
		})
	}
	_ = group.Wait()

	children := make([]*types.FileNode, 0, len(results))
	for _, child := range results {
		if child != nil {
			children = append(children, child)
		}
	}
	return children
}

func (state *scanState) buildFileNode(fullPath string, relativePath string, name string, fileSize int64, symlinkTarget string, explicitlyIncluded bool) *types.FileNode {
	state.recordFile(fileSize)

	node := &types.FileNode{
		Name:   name,
		Path:   relativePath,
		Type:   types.NodeTypeFile,
		Size:   fileSize,
		Target: symlinkTarget,
	}
	switch {
	case !explicitlyIncluded && isGeneratedFile(fullPath, fileSize):
		node.SkipReason = types.SkipReasonGenerated
	case fileSize > state.options.MaximumFileSizeBytes:
		node.SkipReason = types.SkipReasonTooLarge
	default:
		isBinary, sniffError := utils.IsFileBinary(fullPath, fileSize)
		if sniffError != nil {
			node.SkipReason = types.SkipReasonReadError
			state.updateStats(func(stats *types.ScanStats) { stats.Errors++ })
			state.logger.Warn(readFailureMessage, zap.String("path", displayPath(relativePath)), zap.Error(sniffError))
		}
		node.IsBinary = isBinary
	}

	state.updateStats(func(stats *types.ScanStats) {
		if node.IsBinary {
			stats.Binary++
		}
		if node.IsSkipped() {
			stats.Skipped++
		}
	})
	return node
}

func isGeneratedFile(fullPath string, fileSize int64) bool {
	if fileSize <= 0 {
		return false
	}
	prefix, readError := utils.ReadFilePrefix(fullPath, min(generatedSniffLength, fileSize))
	if readError != nil {
		return false
	}
	return strings.Contains(string(prefix), utils.GeneratedMarker)
}

func (state *scanState) updateStats(update func(stats *types.ScanStats)) {
	state.statsMutex.Lock()
	defer state.statsMutex.Unlock()
	update(&state.stats)
}

func (state *scanState) recordFile(fileSize int64) {
	state.statsMutex.Lock()
	defer state.statsMutex.Unlock()
	state.stats.Files++
	state.stats.TotalSizeBytes += fileSize
	state.processedItems++
	if state.totalEstimate == 0 {
		state.totalEstimate = max(state.processedItems+initialEstimateHeadroom, minimumInitialEstimate)
	}
	if state.options.Progress != nil {
		state.options.Progress(state.processedItems, max(state.totalEstimate, state.processedItems))
	}
}

func (state *scanState) extendEstimate(entryCount int) {
	state.statsMutex.Lock()
	defer state.statsMutex.Unlock()
	state.totalEstimate = max(state.totalEstimate, state.processedItems+entryCount)
}

func (state *scanState) recordAccessError(relativePath string, accessError error) {
	state.updateStats(func(stats *types.ScanStats) { stats.Errors++ })
	state.logger.Warn(accessFailureMessage, zap.String("path", displayPath(relativePath)), zap.Error(accessError))
}

func (state *scanState) snapshotStats() types.ScanStats {
	state.statsMutex.Lock()
	defer state.statsMutex.Unlock()
	return state.stats
}

func joinRelativePath(parentPath string, name string) string {
	if parentPath == "" {
		return name
	}
	return parentPath + "/" + name
}

func displayPath(relativePath string) string {
	if relativePath == "" {
		return "."
	}
	return relativePath
}
