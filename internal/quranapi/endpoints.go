package quranapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/mrlokans/quransync/internal/entities"
)

// CDNAudioURL is the canonical audio location used when an edition does not
// carry a direct URL.
func CDNAudioURL(reciterID string, globalAyah int) string {
	return fmt.Sprintf("https://cdn.islamic.network/quran/audio/128/%s/%d.mp3", reciterID, globalAyah)
}

// AyahResult is a single ayah as returned by the /ayah endpoint, together
// with the surah it belongs to.
type AyahResult struct {
	entities.Ayah
	Surah entities.Surah `json:"surah"`
}

type SearchMatch struct {
	Number        int            `json:"number"`
	Text          string         `json:"text"`
	NumberInSurah int            `json:"numberInSurah"`
	Surah         entities.Surah `json:"surah"`
}

type searchData struct {
	Count   int           `json:"count"`
	Matches []SearchMatch `json:"matches"`
}

type ayahText struct {
	Text string `json:"text"`
}

// ListSurahs returns all 114 surahs.
func (c *Client) ListSurahs(ctx context.Context) ([]entities.Surah, error) {
	var surahs []entities.Surah
	if err := c.getData(ctx, "/surah", &surahs); err != nil {
		return nil, err
	}
	return surahs, nil
}

// SurahEdition returns a surah rendered in one edition. An empty edition
// yields the canonical Arabic text.
func (c *Client) SurahEdition(ctx context.Context, number int, edition string) (*entities.SurahDetail, error) {
	path := fmt.Sprintf("/surah/%d", number)
	if edition != "" {
		path += "/" + url.PathEscape(edition)
	}
	var detail entities.SurahDetail
	if err := c.getData(ctx, path, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Ayah returns one ayah by its global number (1..6236) in one edition.
func (c *Client) Ayah(ctx context.Context, globalNumber int, edition string) (*AyahResult, error) {
	var result AyahResult
	path := fmt.Sprintf("/ayah/%d/%s", globalNumber, url.PathEscape(edition))
	if err := c.getData(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Tafsir returns the tafsir text of surah:ayah in the given edition.
func (c *Client) Tafsir(ctx context.Context, surah, ayah int, edition string) (string, error) {
	var data ayahText
	path := fmt.Sprintf("/ayah/%d:%d/%s", surah, ayah, url.PathEscape(edition))
	if err := c.getData(ctx, path, &data); err != nil {
		return "", err
	}
	return data.Text, nil
}

// Search runs a full-text query against one edition. The API answers 404
// when nothing matches, which is reported as an empty result.
func (c *Client) Search(ctx context.Context, query, edition string) ([]SearchMatch, error) {
	var data searchData
	path := fmt.Sprintf("/search/%s/%s", url.PathEscape(query), url.PathEscape(edition))
	err := c.getData(ctx, path, &data)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data.Matches, nil
}

// Editions lists editions of one type. Reciters are requested as
// audio-format verse-by-verse editions.
func (c *Client) Editions(ctx context.Context, editionType entities.EditionType) ([]entities.Edition, error) {
	q := url.Values{}
	if editionType == entities.EditionTypeVerseByVerse {
		q.Set("format", "audio")
	}
	q.Set("type", string(editionType))

	var editions []entities.Edition
	if err := c.getData(ctx, "/edition?"+q.Encode(), &editions); err != nil {
		return nil, err
	}
	return editions, nil
}

// FetchAudio downloads an audio file. 404 is terminal and reported as ErrNotFound.
// CDN requests are paced and tripped apart from content API requests.
func (c *Client) FetchAudio(ctx context.Context, audioURL string) ([]byte, error) {
	return c.fetchWithRetry(ctx, c.audio, audioURL, c.policy)
}
