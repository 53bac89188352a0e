package filter

import (
	"bufio"
	"context"
	"os"
	"regexp"
	"strings"
	"sync"

	utils "github.com/bolt-observer/go_common/utils"
	"github.com/fsnotify/fsnotify"
	"github.com/golang/glog"
)

var (
	commentRegex   = regexp.MustCompile(`\s*#.*$`)
	channelIDRegex = regexp.MustCompile(`^[0-9a-f]{64}$`)
)

// FileFilter is a whitelist backed by a file that is reloaded whenever it changes.
//
// Every non-empty line is one of: a node pubkey, a 32 byte hex channel id,
// "private" or "public". Everything after # is ignored.
type FileFilter struct {
	Filter
	WhitelistFilePath string
	Mutex             sync.Mutex
	DefaultOptions    Options
}

// Reload from file
func (f *FileFilter) Reload() error {
	readFile, err := os.Open(f.WhitelistFilePath)
	if err != nil {
		return err
	}
	defer readFile.Close()

	nodes := make(map[string]struct{})
	chans := make(map[string]struct{})
	options := f.DefaultOptions

	fileScanner := bufio.NewScanner(readFile)
	fileScanner.Split(bufio.ScanLines)
	for fileScanner.Scan() {
		line := strings.TrimSpace(commentRegex.ReplaceAllString(fileScanner.Text(), ""))
		if line == "" {
			continue
		}

		lower := strings.ToLower(line)
		switch {
		case utils.ValidatePubkey(lower):
			nodes[lower] = struct{}{}
		case channelIDRegex.MatchString(lower):
			chans[lower] = struct{}{}
		case lower == "private":
			options |= AllowAllPrivate
		case lower == "public":
			options |= AllowAllPublic
		default:
			glog.Warningf("Invalid line %s", line)
		}
	}

	if err := fileScanner.Err(); err != nil {
		return err
	}

	f.Mutex.Lock()
	defer f.Mutex.Unlock()

	f.nodeIDWhitelist = nodes
	f.chanIDWhitelist = chans
	f.Options = options

	glog.V(3).Infof("Filter %s reloaded", f.WhitelistFilePath)

	return nil
}

// NewFilterFromFile creates a FileFilter that follows filePath until ctx is done
func NewFilterFromFile(ctx context.Context, filePath string, options Options) (FilteringInterface, error) {
	f := &FileFilter{
		WhitelistFilePath: filePath,
		DefaultOptions:    options,
	}

	err := f.Reload()
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	err = watcher.Add(filePath)
	if err != nil {
		watcher.Close()
		return nil, err
	}

	go func(watcher *fsnotify.Watcher) {
		defer watcher.Close()

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				if event.Op&fsnotify.Rename == fsnotify.Rename || event.Op&fsnotify.Remove == fsnotify.Remove {
					// Editors replace the file on save
					err := watcher.Add(event.Name)
					if err != nil {
						glog.Warningf("Watcher error %v", err)
					}
				}

				if err := f.Reload(); err != nil {
					glog.Warningf("Filter reload failed, keeping the previous one: %v", err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				glog.Warningf("Watcher error %v", err)
			case <-ctx.Done():
				return
			}
		}
	}(watcher)

	return f, nil
}

// AllowPubKey checks whether pubkey is allowed
func (f *FileFilter) AllowPubKey(id string) bool {
	f.Mutex.Lock()
	defer f.Mutex.Unlock()

	return f.Filter.AllowPubKey(strings.ToLower(id))
}

// AllowChanID checks channel id
func (f *FileFilter) AllowChanID(id string) bool {
	f.Mutex.Lock()
	defer f.Mutex.Unlock()

	return f.Filter.AllowChanID(strings.ToLower(id))
}

// AllowSpecial is used to allow all private/public chans
func (f *FileFilter) AllowSpecial(private bool) bool {
	f.Mutex.Lock()
	defer f.Mutex.Unlock()

	return f.Filter.AllowSpecial(private)
}
