package catalog

const mediaFields = `
fragment MediaFields on Media {
  id
  idMal
  title {
    romaji
    english
    native
  }
  type
  format
  status
  description
  episodes
  chapters
  volumes
  duration
  season
  seasonYear
  startDate {
    year
    month
    day
  }
  averageScore
  meanScore
  popularity
  favourites
  genres
  tags {
    id
    name
    category
    rank
    isGeneralSpoiler
    isMediaSpoiler
  }
  coverImage {
    extraLarge
    large
    medium
    color
  }
  bannerImage
  siteUrl
  isAdult
}`

// mediaQuery fetches one item with its recommendations, each recommended
// item carrying the same fields as the seed
const mediaQuery = `query($mediaId: Int) {
  Media(id: $mediaId) {
    ...MediaFields
    recommendations {
      nodes {
        id
        rating
        mediaRecommendation {
          ...MediaFields
        }
      }
    }
  }
}
` + mediaFields

const userQuery = `query($userName: String, $type: MediaType) {
  MediaListCollection(userName: $userName, type: $type) {
    lists {
      status
      entries {
        mediaId
      }
    }
  }
}`

const searchQuery = `query($search: String, $page: Int, $perPage: Int, $type: MediaType) {
  Page(page: $page, perPage: $perPage) {
    pageInfo {
      total
      currentPage
      lastPage
      hasNextPage
      perPage
    }
    media(search: $search, type: $type) {
      id
      title {
        romaji
        english
        native
      }
      coverImage {
        medium
        large
      }
      type
      format
      status
      averageScore
      startDate {
        year
        month
        day
      }
    }
  }
}`

// SearchPageSize is the number of results a search returns
const SearchPageSize = 20
